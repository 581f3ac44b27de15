package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ReservationReserved  = "reserved"
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
	ReservationRefunded  = "refunded"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

const (
	RefundRequested = "requested"
	RefundReviewing = "reviewing"
	RefundApproved  = "approved"
	RefundProcessed = "processed"
	RefundDenied    = "denied"
)

const (
	DecisionAutomatic = "automatic"
)

const (
	VehicleSizeSmall  = "small"
	VehicleSizeMedium = "medium"
	VehicleSizeLarge  = "large"
	VehicleSizeVan    = "van"
)
