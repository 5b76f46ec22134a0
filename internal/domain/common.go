package domain

// OrderSide represents the side of an order (buy or sell).
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// PositionSide represents the direction of a position.
// Spot orders carry no explicit position side and are treated as long.
type PositionSide string

const (
	Long  PositionSide = "long"
	Short PositionSide = "short"
)

// OrderStatus represents the lifecycle state of an order as reported by the bot.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// TradingMode distinguishes paper-trading records from live ones.
type TradingMode string

const (
	ModePaper TradingMode = "paper"
	ModeLive  TradingMode = "live"
)

// MarketType distinguishes spot orders from leveraged futures orders.
type MarketType string

const (
	MarketSpot    MarketType = "spot"
	MarketFutures MarketType = "futures"
)

// PairStatus represents the status of a reconstructed trade pair.
type PairStatus string

const (
	PairOpen   PairStatus = "open"
	PairClosed PairStatus = "closed"
)
