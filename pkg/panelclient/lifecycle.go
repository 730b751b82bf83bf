package panelclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	apierrors "xui-vpn-bot/internal/errors"
	"xui-vpn-bot/internal/models"
)

// duplicateEmailPattern matches the panel's free-text rejection of a
// conflicting label. The wording is an external contract of the panel;
// if it changes, this is the one place to fix.
var duplicateEmailPattern = regexp.MustCompile(`Duplicate email: (.+)`)

// FoundClient is the result of a cross-inbound label scan
type FoundClient struct {
	InboundID     int
	InboundRemark string
	Client        models.InboundClient
}

// GetInbound fetches one inbound's full configuration
func (c *Client) GetInbound(ctx context.Context, inboundID int) (*models.Inbound, error) {
	c.logger.Debugf("Getting inbound configuration: id=%d", inboundID)

	resp, err := c.execute(ctx, http.MethodGet, fmt.Sprintf("/panel/api/inbounds/get/%d", inboundID), nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &apierrors.ResponseError{Status: http.StatusOK, Body: resp.Msg}
	}

	var inbound models.Inbound
	if err := decodeObj(resp, &inbound); err != nil {
		return nil, err
	}
	return &inbound, nil
}

// GetInbounds fetches every inbound configured on the panel
func (c *Client) GetInbounds(ctx context.Context) ([]models.Inbound, error) {
	resp, err := c.execute(ctx, http.MethodGet, "/panel/api/inbounds/list", nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &apierrors.ResponseError{Status: http.StatusOK, Body: resp.Msg}
	}

	var inbounds []models.Inbound
	if err := decodeObj(resp, &inbounds); err != nil {
		return nil, err
	}
	return inbounds, nil
}

// CreateClient adds a new client to the target inbound with no IP limit,
// no traffic limit and no expiry. The label must be unique across every
// inbound; the panel only rejects duplicates within a single inbound, so
// the scan below closes the gap. The panel-side rejection remains the
// backstop for writes racing other panel users.
func (c *Client) CreateClient(ctx context.Context, email, credentialID string, inboundID int, enable bool) error {
	c.logger.Infof("Creating client: email=%s, inbound=%d", email, inboundID)

	existing, err := c.FindClientInAllInbounds(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		c.logger.Warnf("Client %s already exists in inbound %q", email, existing.InboundRemark)
		return &apierrors.DuplicateClientError{Email: email, Existing: existing.InboundRemark}
	}

	settings := models.InboundSettings{
		Clients: []models.InboundClient{{
			ID:     credentialID,
			Email:  email,
			Enable: enable,
		}},
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal client settings: %w", err)
	}

	body := map[string]interface{}{
		"id":       inboundID,
		"settings": string(settingsJSON),
	}

	resp, err := c.execute(ctx, http.MethodPost, "/panel/api/inbounds/addClient", body)
	if err != nil {
		return err
	}
	if !resp.Success {
		if match := duplicateEmailPattern.FindStringSubmatch(resp.Msg); match != nil {
			conflicting := strings.TrimSpace(match[1])
			c.logger.Errorf("Panel rejected %s as duplicate of %q", email, conflicting)
			return &apierrors.DuplicateClientError{Email: email, Existing: conflicting}
		}
		return &apierrors.ResponseError{Status: http.StatusOK, Body: resp.Msg}
	}

	c.logger.Infof("Successfully created client: %s", email)
	return nil
}

// GetClientTraffic fetches the usage counters for one label. A label the
// panel has no record for yields a zeroed sample, not an error.
func (c *Client) GetClientTraffic(ctx context.Context, email string) (models.Traffic, error) {
	resp, err := c.execute(ctx, http.MethodGet, "/panel/api/inbounds/getClientTraffics/"+email, nil)
	if err != nil {
		return models.Traffic{}, err
	}

	if !resp.Success || len(resp.Obj) == 0 || string(resp.Obj) == "null" {
		c.logger.Warnf("No traffic data found for %s", email)
		return models.Traffic{}, nil
	}

	var stat models.ClientStat
	if err := decodeObj(resp, &stat); err != nil {
		return models.Traffic{}, err
	}

	return models.Traffic{Up: stat.Up, Down: stat.Down, Total: stat.Up + stat.Down}, nil
}

// UpdateClientStatus flips one client's enabled flag. The inbound is
// fetched first to confirm the target exists before the write.
func (c *Client) UpdateClientStatus(ctx context.Context, email, credentialID string, inboundID int, enable bool) error {
	c.logger.Infof("Updating client status: email=%s, enable=%v", email, enable)

	inbound, err := c.GetInbound(ctx, inboundID)
	if err != nil {
		return err
	}

	var settings models.InboundSettings
	if err := json.Unmarshal([]byte(inbound.Settings), &settings); err != nil {
		return &apierrors.ParseError{Err: err}
	}

	found := false
	for i := range settings.Clients {
		if settings.Clients[i].Email == email || (credentialID != "" && settings.Clients[i].ID == credentialID) {
			settings.Clients[i].Enable = enable
			found = true
			break
		}
	}
	if !found {
		return &apierrors.ClientNotFoundError{Email: email}
	}

	body := map[string]interface{}{
		"id":        credentialID,
		"inboundId": inboundID,
		"enable":    enable,
	}

	resp, err := c.execute(ctx, http.MethodPost, "/panel/api/inbounds/updateClient/"+credentialID, body)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &apierrors.ResponseError{Status: http.StatusOK, Body: resp.Msg}
	}

	c.logger.Infof("Successfully updated client status: %s", email)
	return nil
}

// DeleteClient removes a client from an inbound by its credential
func (c *Client) DeleteClient(ctx context.Context, credentialID string, inboundID int) error {
	c.logger.Infof("Deleting client: credential=%s, inbound=%d", credentialID, inboundID)

	path := fmt.Sprintf("/panel/api/inbounds/%d/delClient/%s", inboundID, credentialID)
	resp, err := c.execute(ctx, http.MethodPost, path, map[string]interface{}{})
	if err != nil {
		return err
	}
	if !resp.Success {
		return &apierrors.ResponseError{Status: http.StatusOK, Body: resp.Msg}
	}
	return nil
}

// FindClientInAllInbounds scans every inbound, in list order, for a
// client with the given label. Inbounds whose settings fail to decode are
// skipped. Returns nil when no inbound holds the label.
func (c *Client) FindClientInAllInbounds(ctx context.Context, email string) (*FoundClient, error) {
	c.logger.Debugf("Searching for client with email: %s", email)

	inbounds, err := c.GetInbounds(ctx)
	if err != nil {
		return nil, err
	}

	for _, inbound := range inbounds {
		var settings models.InboundSettings
		if err := json.Unmarshal([]byte(inbound.Settings), &settings); err != nil {
			c.logger.Warnf("Skipping inbound %d: cannot decode settings: %v", inbound.ID, err)
			continue
		}

		for _, client := range settings.Clients {
			if client.Email == email {
				c.logger.Infof("Found client %s in inbound %d", email, inbound.ID)
				return &FoundClient{
					InboundID:     inbound.ID,
					InboundRemark: inbound.Remark,
					Client:        client,
				}, nil
			}
		}
	}

	c.logger.Infof("Client %s not found in any inbound", email)
	return nil, nil
}

// DeleteClientFromAllInbounds removes a client by label wherever it
// lives. Returns false without error when the label is simply absent.
func (c *Client) DeleteClientFromAllInbounds(ctx context.Context, email string) (bool, error) {
	found, err := c.FindClientInAllInbounds(ctx, email)
	if err != nil {
		return false, err
	}
	if found == nil {
		return false, nil
	}

	if err := c.DeleteClient(ctx, found.Client.Credential(), found.InboundID); err != nil {
		return false, err
	}

	c.logger.Infof("Deleted client %s from inbound %d", email, found.InboundID)
	return true, nil
}
