package models

// InboundSettings is the decoded form of an inbound's settings blob
type InboundSettings struct {
	Clients []InboundClient `json:"clients"`
}

// InboundClient is one proxy credential inside an inbound. ID carries a
// UUID for vless/vmess clients; trojan clients use Password instead.
type InboundClient struct {
	ID         string `json:"id,omitempty"`
	Password   string `json:"password,omitempty"`
	Email      string `json:"email"`
	Enable     bool   `json:"enable"`
	Flow       string `json:"flow"`
	LimitIP    int    `json:"limitIp"`
	TotalGB    int64  `json:"totalGB"`
	ExpiryTime int64  `json:"expiryTime"`
	TgID       string `json:"tgId"`
	SubID      string `json:"subId"`
	Reset      int    `json:"reset"`
}

// Credential returns the identifier the panel's updateClient and
// delClient endpoints key on.
func (c *InboundClient) Credential() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Password
}
