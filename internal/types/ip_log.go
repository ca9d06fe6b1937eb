package types

// IPLog is one persisted row of the ip_logs table
type IPLog struct {
	ClientIP   string `json:"client_ip"`
	ReversedIP string `json:"reversed_ip"`
}
