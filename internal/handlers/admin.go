package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-vpn-bot/internal/commands"
	"xui-vpn-bot/internal/config"
	apierrors "xui-vpn-bot/internal/errors"
	"xui-vpn-bot/internal/helpers"
	"xui-vpn-bot/internal/models"
	"xui-vpn-bot/internal/services"
	"xui-vpn-bot/internal/validation"
)

// Member actions carried in the conversation state payload
const (
	actionAdd     = "add"
	actionInfo    = "info"
	actionEnable  = "enable"
	actionDisable = "disable"
	actionDelete  = "delete"
)

// AdminHandler handles messages from administrators
type AdminHandler struct {
	BaseHandler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	panelService *services.PanelService,
	stateService *services.UserStateService,
	qrService *services.QRService,
	cfg *config.Config,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(panelService, stateService, qrService, cfg, logger),
	}
}

// Handle dispatches an incoming admin message
func (h *AdminHandler) Handle(c telebot.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	switch text {
	case commands.Start, commands.ReturnToMainMenu, commands.Cancel:
		h.stateService.ClearState(userID)
		return h.sendTextMessage(c, "Select an action:", h.createMainKeyboard())
	}

	state := h.stateService.GetState(userID)
	switch state.State {
	case models.AwaitingMemberName:
		return h.handleMemberName(c, state.Payload, text)
	case models.AwaitingDeleteConfirm:
		return h.handleDeleteConfirm(c, state.Payload, text)
	}

	switch {
	case text == commands.AddMember:
		return h.promptMemberName(c, actionAdd, "Enter a name for the new member:")
	case text == commands.MemberInfo:
		return h.promptMemberName(c, actionInfo, "Enter the member name:")
	case text == commands.EnableMember:
		return h.promptMemberName(c, actionEnable, "Enter the member name to enable:")
	case text == commands.DisableMember:
		return h.promptMemberName(c, actionDisable, "Enter the member name to disable:")
	case text == commands.DeleteMember:
		return h.promptMemberName(c, actionDelete, "Enter the member name to delete:")
	case text == commands.Inbounds:
		return h.handleListInbounds(c)
	case text == commands.UsageReport:
		return h.handleUsageReport(c)
	case strings.HasPrefix(text, commands.TogglePrefix):
		return h.handleToggleInbound(c, text)
	}

	return h.sendTextMessage(c, "Unknown command. Select an action:", h.createMainKeyboard())
}

// promptMemberName stores the pending action and asks for a member name
func (h *AdminHandler) promptMemberName(c telebot.Context, action, prompt string) error {
	h.stateService.SetState(c.Sender().ID, &models.UserState{
		State:   models.AwaitingMemberName,
		Payload: action,
	})
	return h.sendTextMessage(c, prompt, h.createReturnKeyboard())
}

// handleMemberName runs the pending action against the entered name
func (h *AdminHandler) handleMemberName(c telebot.Context, action, name string) error {
	userID := c.Sender().ID

	if err := validation.ValidateMemberName(name); err != nil {
		return h.sendTextMessage(c, fmt.Sprintf("Invalid name: %v. Try again:", err), h.createReturnKeyboard())
	}

	h.stateService.ClearState(userID)
	ctx := context.Background()

	switch action {
	case actionAdd:
		return h.addMember(ctx, c, name)
	case actionInfo:
		return h.memberInfo(ctx, c, name)
	case actionEnable:
		return h.setMemberEnabled(ctx, c, name, true)
	case actionDisable:
		return h.setMemberEnabled(ctx, c, name, false)
	case actionDelete:
		h.stateService.SetState(userID, &models.UserState{
			State:   models.AwaitingDeleteConfirm,
			Payload: name,
		})
		return h.sendTextMessage(c, fmt.Sprintf("Delete member <b>%s</b>?", name), h.createConfirmKeyboard())
	}

	return h.sendTextMessage(c, "Select an action:", h.createMainKeyboard())
}

// addMember provisions a new client and replies with its link and QR
func (h *AdminHandler) addMember(ctx context.Context, c telebot.Context, name string) error {
	inboundID, err := h.pickInbound(ctx)
	if err != nil {
		h.logger.Errorf("Failed to pick inbound for %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to reach the panel. Try again later.", h.createMainKeyboard())
	}

	credentialID, err := h.panelService.CreateMember(ctx, name, inboundID)
	if err != nil {
		var dup *apierrors.DuplicateClientError
		if errors.As(err, &dup) {
			return h.sendTextMessage(c,
				fmt.Sprintf("Member <b>%s</b> already exists (%s). Pick another name.", dup.Email, dup.Existing),
				h.createMainKeyboard())
		}
		h.logger.Errorf("Failed to create member %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to create member.", h.createMainKeyboard())
	}

	link, err := h.panelService.ConnectionLink(ctx, inboundID, name, credentialID)
	if err != nil {
		h.logger.Errorf("Failed to build link for %s: %v", name, err)
		return h.sendTextMessage(c,
			fmt.Sprintf("Member <b>%s</b> created, but no connection link is available.", name),
			h.createMainKeyboard())
	}

	if err := h.sendTextMessage(c,
		fmt.Sprintf("Member <b>%s</b> created.\n\n<code>%s</code>", name, link),
		h.createMainKeyboard()); err != nil {
		return err
	}
	return h.sendQRCode(c, link)
}

// memberInfo replies with traffic counters and the connection link
func (h *AdminHandler) memberInfo(ctx context.Context, c telebot.Context, name string) error {
	found, err := h.panelService.FindMember(ctx, name)
	if err != nil {
		h.logger.Errorf("Failed to look up member %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to reach the panel. Try again later.", h.createMainKeyboard())
	}
	if found == nil {
		return h.sendTextMessage(c, fmt.Sprintf("Member <b>%s</b> not found.", name), h.createMainKeyboard())
	}

	traffic, err := h.panelService.GetTraffic(ctx, name)
	if err != nil {
		h.logger.Errorf("Failed to fetch traffic for %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to fetch traffic.", h.createMainKeyboard())
	}

	info := helpers.FormatTraffic(name, traffic)
	info += fmt.Sprintf("\nInbound: %s", found.InboundRemark)

	link, err := h.panelService.ConnectionLink(ctx, found.InboundID, name, found.Client.Credential())
	if err == nil {
		info += fmt.Sprintf("\n\n<code>%s</code>", link)
	}

	return h.sendTextMessage(c, info, h.createMainKeyboard())
}

// setMemberEnabled toggles one member's credential
func (h *AdminHandler) setMemberEnabled(ctx context.Context, c telebot.Context, name string, enable bool) error {
	found, err := h.panelService.FindMember(ctx, name)
	if err != nil {
		h.logger.Errorf("Failed to look up member %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to reach the panel. Try again later.", h.createMainKeyboard())
	}
	if found == nil {
		return h.sendTextMessage(c, fmt.Sprintf("Member <b>%s</b> not found.", name), h.createMainKeyboard())
	}

	if err := h.panelService.SetMemberEnabled(ctx, name, found.Client.Credential(), found.InboundID, enable); err != nil {
		h.logger.Errorf("Failed to update member %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to update member status.", h.createMainKeyboard())
	}

	status := "enabled"
	if !enable {
		status = "disabled"
	}
	return h.sendTextMessage(c, fmt.Sprintf("Member <b>%s</b> %s.", name, status), h.createMainKeyboard())
}

// handleDeleteConfirm deletes the member held in the state payload
func (h *AdminHandler) handleDeleteConfirm(c telebot.Context, name, text string) error {
	h.stateService.ClearState(c.Sender().ID)

	if text != commands.Confirm {
		return h.sendTextMessage(c, "Deletion cancelled.", h.createMainKeyboard())
	}

	deleted, err := h.panelService.DeleteMember(context.Background(), name)
	if err != nil {
		h.logger.Errorf("Failed to delete member %s: %v", name, err)
		return h.sendTextMessage(c, "Failed to delete member.", h.createMainKeyboard())
	}
	if !deleted {
		return h.sendTextMessage(c, fmt.Sprintf("Member <b>%s</b> was not found on the panel.", name), h.createMainKeyboard())
	}

	return h.sendTextMessage(c, fmt.Sprintf("Member <b>%s</b> deleted.", name), h.createMainKeyboard())
}

// handleListInbounds shows the panel's inbounds and their bot-side state
func (h *AdminHandler) handleListInbounds(c telebot.Context) error {
	views, err := h.panelService.ListInbounds(context.Background())
	if err != nil {
		h.logger.Errorf("Failed to list inbounds: %v", err)
		return h.sendTextMessage(c, "Failed to reach the panel. Try again later.", h.createMainKeyboard())
	}

	if len(views) == 0 {
		return h.sendTextMessage(c, "No inbounds configured on the panel.", h.createMainKeyboard())
	}

	var sb strings.Builder
	sb.WriteString("<b>Inbounds:</b>\n")
	for _, view := range views {
		mark := "✖"
		if view.IsEnabled {
			mark = "✔"
		}
		sb.WriteString(fmt.Sprintf("%s %d: %s (%s, port %d)\n", mark, view.ID, view.Remark, view.Protocol, view.Port))
	}
	sb.WriteString(fmt.Sprintf("\nUse <code>%s &lt;id&gt;</code> to toggle.", commands.TogglePrefix))

	return h.sendTextMessage(c, sb.String(), h.createMainKeyboard())
}

// handleToggleInbound flips whether the bot offers an inbound
func (h *AdminHandler) handleToggleInbound(c telebot.Context, text string) error {
	arg := strings.TrimSpace(strings.TrimPrefix(text, commands.TogglePrefix))
	inboundID, err := strconv.Atoi(arg)
	if err != nil {
		return h.sendTextMessage(c, fmt.Sprintf("Usage: <code>%s &lt;id&gt;</code>", commands.TogglePrefix), h.createMainKeyboard())
	}

	enabled, err := h.panelService.ToggleInbound(context.Background(), inboundID)
	if err != nil {
		h.logger.Errorf("Failed to toggle inbound %d: %v", inboundID, err)
		return h.sendTextMessage(c, fmt.Sprintf("Failed to toggle inbound %d.", inboundID), h.createMainKeyboard())
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}
	return h.sendTextMessage(c, fmt.Sprintf("Inbound %d %s for members.", inboundID, status), h.createMainKeyboard())
}

// handleUsageReport shows the per-inbound traffic table
func (h *AdminHandler) handleUsageReport(c telebot.Context) error {
	inbounds, err := h.panelService.GetInbounds(context.Background())
	if err != nil {
		h.logger.Errorf("Failed to fetch inbounds for usage report: %v", err)
		return h.sendTextMessage(c, "Failed to reach the panel. Try again later.", h.createMainKeyboard())
	}

	return h.sendTextMessage(c, helpers.FormatUsageReport(inbounds), h.createMainKeyboard())
}

// pickInbound selects the inbound new members are provisioned on: the
// first one the bot offers, falling back to the panel's first inbound.
func (h *AdminHandler) pickInbound(ctx context.Context) (int, error) {
	views, err := h.panelService.ListInbounds(ctx)
	if err != nil {
		return 0, err
	}
	if len(views) == 0 {
		return 0, fmt.Errorf("no inbounds configured on panel")
	}

	for _, view := range views {
		if view.IsEnabled {
			return view.ID, nil
		}
	}
	return views[0].ID, nil
}
