package panelclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apierrors "xui-vpn-bot/internal/errors"
	"xui-vpn-bot/internal/models"
)

// GetClientLink builds a shareable connection URI for one client. Link
// generation is best-effort: an inbound the panel rejects, an unknown
// client or an unsupported protocol yields an empty link rather than an
// error, and callers are expected to fall back to a locally synthesized
// one.
func (c *Client) GetClientLink(ctx context.Context, inboundID int, email string) (string, error) {
	c.logger.Infof("Getting client link: inbound=%d, email=%s", inboundID, email)

	inbound, err := c.GetInbound(ctx, inboundID)
	if err != nil {
		var respErr *apierrors.ResponseError
		if errors.As(err, &respErr) {
			c.logger.Warnf("No link for %s: inbound %d unavailable: %v", email, inboundID, err)
			return "", nil
		}
		return "", err
	}

	var settings models.InboundSettings
	if err := json.Unmarshal([]byte(inbound.Settings), &settings); err != nil {
		return "", &apierrors.ParseError{Err: err}
	}

	var target *models.InboundClient
	for i := range settings.Clients {
		if settings.Clients[i].Email == email {
			target = &settings.Clients[i]
			break
		}
	}
	if target == nil {
		c.logger.Warnf("Client %s not found in inbound %d", email, inboundID)
		return "", nil
	}

	stream, err := decodeStreamSettings(inbound.StreamSettings)
	if err != nil {
		return "", &apierrors.ParseError{Err: err}
	}

	link, err := c.buildLink(target, inbound, stream)
	if err != nil {
		var unsupported *apierrors.UnsupportedProtocolError
		if errors.As(err, &unsupported) {
			c.logger.Warnf("No link for %s: %v", email, err)
			return "", nil
		}
		return "", err
	}

	c.logger.Infof("Successfully generated link for %s", email)
	return link, nil
}

// decodeStreamSettings parses the transport/security blob, defaulting to
// plain TCP with no security when fields are absent
func decodeStreamSettings(raw string) (models.StreamSettings, error) {
	stream := models.StreamSettings{Network: "tcp", Security: "none"}
	if raw == "" {
		return stream, nil
	}
	if err := json.Unmarshal([]byte(raw), &stream); err != nil {
		return stream, err
	}
	if stream.Network == "" {
		stream.Network = "tcp"
	}
	if stream.Security == "" {
		stream.Security = "none"
	}
	return stream, nil
}

// buildLink dispatches to the protocol-specific builder
func (c *Client) buildLink(client *models.InboundClient, inbound *models.Inbound, stream models.StreamSettings) (string, error) {
	switch strings.ToLower(inbound.Protocol) {
	case "vless":
		return c.buildVlessLink(client, inbound, stream), nil
	case "vmess":
		return c.buildVmessLink(client, inbound, stream)
	case "trojan":
		return c.buildTrojanLink(client, inbound, stream), nil
	default:
		return "", &apierrors.UnsupportedProtocolError{Protocol: inbound.Protocol}
	}
}

// serverAddress resolves the address clients should dial: the inbound's
// listen address unless it is empty or a wildcard, then the panel's own
// host.
func (c *Client) serverAddress(inbound *models.Inbound) string {
	if inbound.Listen != "" && inbound.Listen != "0.0.0.0" {
		return inbound.Listen
	}

	host := strings.TrimPrefix(strings.TrimPrefix(c.panelConfig.BaseURL, "https://"), "http://")
	if i := strings.IndexAny(host, ":/"); i >= 0 {
		host = host[:i]
	}
	return host
}

// buildVlessLink builds a vless:// URI
func (c *Client) buildVlessLink(client *models.InboundClient, inbound *models.Inbound, stream models.StreamSettings) string {
	params := url.Values{}
	params.Set("type", stream.Network)
	params.Set("encryption", "none")

	switch stream.Security {
	case "tls":
		params.Set("security", "tls")
		if stream.TLS.ServerName != "" {
			params.Set("sni", stream.TLS.ServerName)
		}
		if len(stream.TLS.ALPN) > 0 {
			params.Set("alpn", strings.Join(stream.TLS.ALPN, ","))
		}
	case "reality":
		params.Set("security", "reality")
		if stream.Reality.PublicKey != "" {
			params.Set("pbk", stream.Reality.PublicKey)
		}
		if stream.Reality.Fingerprint != "" {
			params.Set("fp", stream.Reality.Fingerprint)
		}
		if len(stream.Reality.ServerNames) > 0 {
			params.Set("sni", stream.Reality.ServerNames[0])
		}
		if len(stream.Reality.ShortIDs) > 0 {
			params.Set("sid", stream.Reality.ShortIDs[0])
		}
		if stream.Reality.SpiderX != "" {
			params.Set("spx", stream.Reality.SpiderX)
		}
	}

	if client.Flow != "" {
		params.Set("flow", client.Flow)
	}

	switch stream.Network {
	case "ws":
		path := stream.WS.Path
		if path == "" {
			path = "/"
		}
		params.Set("path", path)
		if host := stream.WS.Headers["Host"]; host != "" {
			params.Set("host", host)
		}
	case "grpc":
		if stream.GRPC.ServiceName != "" {
			params.Set("serviceName", stream.GRPC.ServiceName)
		}
	case "tcp":
		if headerType := stream.TCP.Header.Type; headerType != "" && headerType != "none" {
			params.Set("headerType", headerType)
		}
	}

	return fmt.Sprintf("vless://%s@%s:%d?%s#%s",
		client.ID, c.serverAddress(inbound), inbound.Port, params.Encode(), url.PathEscape(client.Email))
}

// vmessConfig is the v2 share-format JSON carried in a vmess:// URI.
// Field names and their presence are a compatibility surface consumed by
// third-party client apps.
type vmessConfig struct {
	V    string `json:"v"`
	PS   string `json:"ps"`
	Add  string `json:"add"`
	Port string `json:"port"`
	ID   string `json:"id"`
	Aid  string `json:"aid"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host"`
	Path string `json:"path"`
	TLS  string `json:"tls"`
}

// buildVmessLink builds a vmess:// URI (base64 of the share JSON)
func (c *Client) buildVmessLink(client *models.InboundClient, inbound *models.Inbound, stream models.StreamSettings) (string, error) {
	cfg := vmessConfig{
		V:    "2",
		PS:   client.Email,
		Add:  c.serverAddress(inbound),
		Port: strconv.Itoa(inbound.Port),
		ID:   client.ID,
		Aid:  "0",
		Net:  stream.Network,
		Type: "none",
	}

	if stream.Security == "tls" {
		cfg.TLS = "tls"
	}

	if stream.Network == "ws" {
		cfg.Path = stream.WS.Path
		if cfg.Path == "" {
			cfg.Path = "/"
		}
		cfg.Host = stream.WS.Headers["Host"]
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vmess config: %w", err)
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(raw), nil
}

// buildTrojanLink builds a trojan:// URI
func (c *Client) buildTrojanLink(client *models.InboundClient, inbound *models.Inbound, stream models.StreamSettings) string {
	params := url.Values{}
	params.Set("type", stream.Network)
	params.Set("security", stream.Security)

	if stream.Security == "tls" && stream.TLS.ServerName != "" {
		params.Set("sni", stream.TLS.ServerName)
	}

	return fmt.Sprintf("trojan://%s@%s:%d?%s#%s",
		client.Password, c.serverAddress(inbound), inbound.Port, params.Encode(), url.PathEscape(client.Email))
}
