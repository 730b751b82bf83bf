package models

// StreamSettings is the decoded form of an inbound's streamSettings blob.
// Only the sub-structure matching Network and Security is populated by
// the panel; absent sub-fields stay at their zero values.
type StreamSettings struct {
	Network  string          `json:"network"`
	Security string          `json:"security"`
	TLS      TLSSettings     `json:"tlsSettings"`
	Reality  RealitySettings `json:"realitySettings"`
	WS       WSSettings      `json:"wsSettings"`
	GRPC     GRPCSettings    `json:"grpcSettings"`
	TCP      TCPSettings     `json:"tcpSettings"`
}

// TLSSettings holds the conventional TLS security parameters
type TLSSettings struct {
	ServerName string   `json:"serverName"`
	ALPN       []string `json:"alpn"`
}

// RealitySettings holds the REALITY security parameters
type RealitySettings struct {
	PublicKey   string   `json:"publicKey"`
	Fingerprint string   `json:"fingerprint"`
	ServerNames []string `json:"serverNames"`
	ShortIDs    []string `json:"shortIds"`
	SpiderX     string   `json:"spiderX"`
}

// WSSettings holds the WebSocket transport parameters
type WSSettings struct {
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
}

// GRPCSettings holds the gRPC transport parameters
type GRPCSettings struct {
	ServiceName string `json:"serviceName"`
}

// TCPSettings holds the raw TCP transport parameters
type TCPSettings struct {
	Header TCPHeader `json:"header"`
}

// TCPHeader describes the TCP header obfuscation mode
type TCPHeader struct {
	Type string `json:"type"`
}
