package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"xui-vpn-bot/internal/config"
	"xui-vpn-bot/internal/models"
	"xui-vpn-bot/pkg/panelclient"
)

// PanelService exposes panel operations to the bot handlers and keeps the
// process-local set of inbounds the bot offers to members. The set lives
// for the lifetime of the process only; the panel remains the source of
// truth for everything else.
type PanelService struct {
	client     *panelclient.Client
	config     *config.Config
	enabledSet *cache.Cache
	logger     *logrus.Logger
}

// InboundView is one row of the inbound list shown to admins
type InboundView struct {
	ID        int
	Remark    string
	Protocol  string
	Port      int
	IsEnabled bool
}

// NewPanelService creates a new panel service
func NewPanelService(cfg *config.Config, logger *logrus.Logger) *PanelService {
	return &PanelService{
		client:     panelclient.NewClient(cfg.Panel, logger),
		config:     cfg,
		enabledSet: cache.New(cache.NoExpiration, 0),
		logger:     logger,
	}
}

// CreateMember provisions a new client on the target inbound and returns
// the generated credential.
func (s *PanelService) CreateMember(ctx context.Context, email string, inboundID int) (string, error) {
	credentialID := uuid.NewString()
	if err := s.client.CreateClient(ctx, email, credentialID, inboundID, true); err != nil {
		return "", err
	}
	return credentialID, nil
}

// FindMember locates a client by label across every inbound
func (s *PanelService) FindMember(ctx context.Context, email string) (*panelclient.FoundClient, error) {
	return s.client.FindClientInAllInbounds(ctx, email)
}

// GetTraffic fetches the usage counters for one member
func (s *PanelService) GetTraffic(ctx context.Context, email string) (models.Traffic, error) {
	return s.client.GetClientTraffic(ctx, email)
}

// SetMemberEnabled enables or disables a member's credential
func (s *PanelService) SetMemberEnabled(ctx context.Context, email, credentialID string, inboundID int, enable bool) error {
	return s.client.UpdateClientStatus(ctx, email, credentialID, inboundID, enable)
}

// DeleteMember removes a member wherever it lives; false means the label
// was not present on the panel.
func (s *PanelService) DeleteMember(ctx context.Context, email string) (bool, error) {
	return s.client.DeleteClientFromAllInbounds(ctx, email)
}

// GetInbounds fetches every inbound configured on the panel
func (s *PanelService) GetInbounds(ctx context.Context) ([]models.Inbound, error) {
	return s.client.GetInbounds(ctx)
}

// ConnectionLink returns the shareable URI for a member, falling back to
// a locally synthesized vless link when the panel cannot produce one.
func (s *PanelService) ConnectionLink(ctx context.Context, inboundID int, email, credentialID string) (string, error) {
	link, err := s.client.GetClientLink(ctx, inboundID, email)
	if err != nil {
		return "", err
	}
	if link != "" {
		return link, nil
	}

	s.logger.Warnf("Panel produced no link for %s, synthesizing locally", email)
	fallback := s.fallbackLink(credentialID, email)
	if fallback == "" {
		return "", fmt.Errorf("no connection link available for %s", email)
	}
	return fallback, nil
}

// fallbackLink builds a minimal vless URI from static configuration
func (s *PanelService) fallbackLink(credentialID, email string) string {
	if s.config.Panel.FallbackServer == "" || credentialID == "" {
		return ""
	}

	params := url.Values{}
	params.Set("type", "tcp")
	params.Set("security", "tls")
	if s.config.Panel.FallbackSNI != "" {
		params.Set("sni", s.config.Panel.FallbackSNI)
	}

	return fmt.Sprintf("vless://%s@%s:%d?%s#%s",
		credentialID, s.config.Panel.FallbackServer, s.config.Panel.FallbackPort,
		params.Encode(), url.PathEscape(email))
}

// ListInbounds merges panel state with the bot's enabled set
func (s *PanelService) ListInbounds(ctx context.Context) ([]InboundView, error) {
	inbounds, err := s.client.GetInbounds(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]InboundView, 0, len(inbounds))
	for _, inbound := range inbounds {
		views = append(views, InboundView{
			ID:        inbound.ID,
			Remark:    inbound.Remark,
			Protocol:  inbound.Protocol,
			Port:      inbound.Port,
			IsEnabled: s.IsInboundEnabled(inbound.ID),
		})
	}
	return views, nil
}

// ToggleInbound flips whether the bot offers an inbound to members and
// returns the new state. The inbound must exist on the panel.
func (s *PanelService) ToggleInbound(ctx context.Context, inboundID int) (bool, error) {
	inbounds, err := s.client.GetInbounds(ctx)
	if err != nil {
		return false, err
	}

	exists := false
	for _, inbound := range inbounds {
		if inbound.ID == inboundID {
			exists = true
			break
		}
	}
	if !exists {
		return false, fmt.Errorf("inbound %d not found on panel", inboundID)
	}

	key := inboundKey(inboundID)
	if _, found := s.enabledSet.Get(key); found {
		s.enabledSet.Delete(key)
		s.logger.Infof("Inbound %d disabled for members", inboundID)
		return false, nil
	}

	s.enabledSet.Set(key, true, cache.NoExpiration)
	s.logger.Infof("Inbound %d enabled for members", inboundID)
	return true, nil
}

// IsInboundEnabled reports whether the bot offers an inbound to members
func (s *PanelService) IsInboundEnabled(inboundID int) bool {
	_, found := s.enabledSet.Get(inboundKey(inboundID))
	return found
}

func inboundKey(inboundID int) string {
	return fmt.Sprintf("inbound_%d", inboundID)
}
