package discord

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"quotebot/internal/ports"
)

// historyPageSize is the gateway's per-request cap on channel history reads.
const historyPageSize = 100

// interaction adapts one discordgo.InteractionCreate event to
// ports.Interaction. Interactive waits are registered with the gateway's
// waitRouter, which hands matching component and modal events back to the
// blocked handler goroutine.
type interaction struct {
	session *discordgo.Session
	event   *discordgo.InteractionCreate
	router  *waitRouter

	options map[string]*discordgo.ApplicationCommandInteractionDataOption

	// acked tracks whether the initial response was sent, so the dispatcher
	// knows whether a failure reply needs Reply or Followup.
	acked bool
}

func newInteraction(session *discordgo.Session, event *discordgo.InteractionCreate, router *waitRouter) *interaction {
	data := event.ApplicationCommandData()

	options := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		options[opt.Name] = opt
	}

	return &interaction{
		session: session,
		event:   event,
		router:  router,
		options: options,
	}
}

func (in *interaction) GuildID() string {
	return in.event.GuildID
}

func (in *interaction) ChannelID() string {
	return in.event.ChannelID
}

func (in *interaction) UserID() string {
	return interactionUserID(in.event.Interaction)
}

func (in *interaction) Option(name string) string {
	opt, ok := in.options[name]
	if !ok {
		return ""
	}

	return opt.StringValue()
}

func (in *interaction) IntOption(name string) (int64, bool) {
	opt, ok := in.options[name]
	if !ok {
		return 0, false
	}

	return opt.IntValue(), true
}

func (in *interaction) Defer(_ context.Context, ephemeral bool) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		}
	}

	if err := in.session.InteractionRespond(in.event.Interaction, response); err != nil {
		return fmt.Errorf("deferring interaction: %w", err)
	}

	in.acked = true

	return nil
}

func (in *interaction) Reply(_ context.Context, msg ports.Message) error {
	data := &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Components: buttonRows(msg.Buttons),
		Files:      attachments(msg.Files),
	}
	if msg.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := in.session.InteractionRespond(in.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("replying to interaction: %w", err)
	}

	in.acked = true

	return nil
}

func (in *interaction) Edit(_ context.Context, msg ports.Message) error {
	components := buttonRows(msg.Buttons)

	_, err := in.session.InteractionResponseEdit(in.event.Interaction, &discordgo.WebhookEdit{
		Content:    &msg.Content,
		Components: &components,
		Files:      attachments(msg.Files),
	})
	if err != nil {
		return fmt.Errorf("editing interaction response: %w", err)
	}

	return nil
}

func (in *interaction) Followup(_ context.Context, msg ports.Message) error {
	params := &discordgo.WebhookParams{
		Content:    msg.Content,
		Components: buttonRows(msg.Buttons),
		Files:      attachments(msg.Files),
	}
	if msg.Ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	if _, err := in.session.FollowupMessageCreate(in.event.Interaction, true, params); err != nil {
		return fmt.Errorf("sending followup: %w", err)
	}

	return nil
}

func (in *interaction) AwaitClick(ctx context.Context, timeout time.Duration) (ports.Click, error) {
	// Component events carry the message they were clicked on, so the wait
	// is keyed by the initial response's message ID.
	message, err := in.session.InteractionResponse(in.event.Interaction)
	if err != nil {
		return nil, fmt.Errorf("resolving interaction response message: %w", err)
	}

	event, err := in.router.awaitClick(ctx, message.ID, in.UserID(), timeout)
	if err != nil {
		return nil, err
	}

	return &click{session: in.session, event: event}, nil
}

func (in *interaction) AwaitForm(ctx context.Context, formID string, timeout time.Duration) (ports.FormSubmit, error) {
	event, err := in.router.awaitForm(ctx, formID, in.UserID(), timeout)
	if err != nil {
		return nil, err
	}

	return &formSubmit{session: in.session, event: event}, nil
}

func (in *interaction) History(_ context.Context, limit int, since time.Time) ([]ports.ChannelMessage, error) {
	messages := make([]ports.ChannelMessage, 0, limit)

	beforeID := ""
	for len(messages) < limit {
		pageSize := min(limit-len(messages), historyPageSize)

		page, err := in.session.ChannelMessages(in.event.ChannelID, pageSize, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("reading channel history: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			if msg.Timestamp.Before(since) {
				return messages, nil
			}

			messages = append(messages, channelMessage(msg))
		}

		beforeID = page[len(page)-1].ID
	}

	return messages, nil
}

func channelMessage(msg *discordgo.Message) ports.ChannelMessage {
	out := ports.ChannelMessage{
		Content: msg.Content,
		SentAt:  msg.Timestamp,
	}
	if msg.Author != nil {
		out.AuthorID = msg.Author.ID
		out.AuthorName = msg.Author.Username
		out.Bot = msg.Author.Bot
	}

	return out
}

// click adapts one component interaction to ports.Click.
type click struct {
	session *discordgo.Session
	event   *discordgo.InteractionCreate
}

func (c *click) CustomID() string {
	return c.event.MessageComponentData().CustomID
}

func (c *click) Update(_ context.Context, msg ports.Message) error {
	err := c.session.InteractionRespond(c.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    msg.Content,
			Components: buttonRows(msg.Buttons),
		},
	})
	if err != nil {
		return fmt.Errorf("updating clicked message: %w", err)
	}

	return nil
}

func (c *click) OpenForm(_ context.Context, form ports.Form) error {
	components := make([]discordgo.MessageComponent, 0, len(form.Fields))
	for _, field := range form.Fields {
		input := discordgo.TextInput{
			CustomID:  field.ID,
			Label:     field.Label,
			Value:     field.Value,
			Style:     discordgo.TextInputShort,
			MaxLength: field.MaxLength,
		}
		if field.Paragraph {
			input.Style = discordgo.TextInputParagraph
		}

		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{input},
		})
	}

	err := c.session.InteractionRespond(c.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   form.ID,
			Title:      form.Title,
			Components: components,
		},
	})
	if err != nil {
		return fmt.Errorf("opening form %s: %w", form.ID, err)
	}

	return nil
}

// formSubmit adapts one modal submission to ports.FormSubmit.
type formSubmit struct {
	session *discordgo.Session
	event   *discordgo.InteractionCreate
}

func (f *formSubmit) Value(fieldID string) string {
	for _, row := range f.event.ModalSubmitData().Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}

		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if ok && input.CustomID == fieldID {
				return input.Value
			}
		}
	}

	return ""
}

func (f *formSubmit) Acknowledge(_ context.Context) error {
	err := f.session.InteractionRespond(f.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("acknowledging form submission: %w", err)
	}

	return nil
}

func (f *formSubmit) Respond(_ context.Context, msg ports.Message) error {
	data := &discordgo.InteractionResponseData{
		Content: msg.Content,
	}
	if msg.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := f.session.InteractionRespond(f.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("responding to form submission: %w", err)
	}

	return nil
}

// interactionUserID returns the invoker's user ID for both guild and DM
// interactions.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}

	return ""
}

// buttonRows groups buttons into action rows of at most five, the gateway's
// per-row component limit.
func buttonRows(buttons []ports.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return []discordgo.MessageComponent{}
	}

	const rowSize = 5

	rows := make([]discordgo.MessageComponent, 0, (len(buttons)+rowSize-1)/rowSize)
	for start := 0; start < len(buttons); start += rowSize {
		end := min(start+rowSize, len(buttons))

		row := discordgo.ActionsRow{
			Components: make([]discordgo.MessageComponent, 0, end-start),
		}
		for _, button := range buttons[start:end] {
			style := discordgo.PrimaryButton
			if button.Danger {
				style = discordgo.DangerButton
			}

			row.Components = append(row.Components, discordgo.Button{
				CustomID: button.ID,
				Label:    button.Label,
				Style:    style,
			})
		}

		rows = append(rows, row)
	}

	return rows
}

func attachments(files []ports.File) []*discordgo.File {
	if len(files) == 0 {
		return nil
	}

	out := make([]*discordgo.File, 0, len(files))
	for _, file := range files {
		out = append(out, &discordgo.File{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reader:      bytes.NewReader(file.Data),
		})
	}

	return out
}
