package observability

const (
	MPaymentRequests        MetricKey = "payment_requests_total"
	MPaymentDuration        MetricKey = "payment_duration_seconds"
	MNotifications          MetricKey = "notifications_total"
	MHTTPRequests           MetricKey = "http_requests_total"
	MHTTPRequestDuration    MetricKey = "http_request_duration_seconds"
	MGatewayRequests        MetricKey = "gateway_requests_total"
	MGatewayRequestDuration MetricKey = "gateway_request_duration_seconds"
)
