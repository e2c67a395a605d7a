package config

import "os"

// Backend selection values for PAYMENT_BACKEND.
const (
	BackendOffline = "offline"
	BackendGateway = "gateway"
)

// Config is loaded once from the environment at startup.
type Config struct {
	ServiceName string
	Env         string
	Addr        string

	Backend       string
	GatewayURL    string
	GatewayAPIKey string
	GatewayPlanID string

	NotifyChannel string // "auto", "email" or "sms"

	TransactionsLog string
	LedgerPath      string // when set, the bolt ledger replaces the text log
}

func Load() Config {
	return Config{
		ServiceName:     getenvDefault("SERVICE_NAME", "payflow"),
		Env:             getenvDefault("ENV", "dev"),
		Addr:            getenvDefault("ADDR", ":8080"),
		Backend:         getenvDefault("PAYMENT_BACKEND", BackendOffline),
		GatewayURL:      os.Getenv("GATEWAY_URL"),
		GatewayAPIKey:   os.Getenv("GATEWAY_API_KEY"),
		GatewayPlanID:   os.Getenv("GATEWAY_PLAN_ID"),
		NotifyChannel:   getenvDefault("NOTIFY_CHANNEL", "auto"),
		TransactionsLog: getenvDefault("TRANSACTIONS_LOG", "transactions.log"),
		LedgerPath:      os.Getenv("LEDGER_PATH"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
