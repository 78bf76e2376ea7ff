package enums

// NotificationType classifies supplier panel notifications.
type NotificationType string

const (
	NotificationTypeNewOrder    NotificationType = "new_order"
	NotificationTypeOrderStatus NotificationType = "order_status"
	NotificationTypeSystem      NotificationType = "system"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}
