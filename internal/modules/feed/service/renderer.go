package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/reshetovitsme/tgfeed/internal/modules/feed/domain"
	identity "github.com/reshetovitsme/tgfeed/internal/modules/identity/service"
	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
	peer "github.com/reshetovitsme/tgfeed/internal/modules/peer/domain"
)

const (
	titleLength   = 60
	maxVideoWidth = 640

	unknownAuthor  = "Unknown author"
	privateChannel = "Private channel"
	unknownSource  = "Unknown source"
)

// Identities resolves display names of peers
type Identities interface {
	Resolve(ctx context.Context, ref peer.Ref) (identity.Identity, error)
	Remember(p peer.Peer)
}

var _ Identities = (*identity.Service)(nil)

// Renderer turns messages into feed entries
type Renderer struct {
	identities Identities
	links      peer.Links
	logger     *slog.Logger
}

func NewRenderer(identities Identities, links peer.Links) *Renderer {
	return &Renderer{
		identities: identities,
		links:      links,
		logger:     slog.Default().With("component", "renderer"),
	}
}

// Render builds the entry of a message posted in p. Lookups that fail
// degrade to placeholder text; rendering itself never fails.
func (r *Renderer) Render(ctx context.Context, p peer.Peer, m *message.Message) *domain.Entry {
	author := r.author(ctx, m)

	entry := &domain.Entry{
		MessageID: m.ID,
		GUID:      domain.GUID(p.Ref().ID, m.ID),
		Title:     title(m),
		Author:    author,
		Link:      r.links.Permalink(p, m.ID),
		Date:      m.Date,
		GroupID:   m.GroupID,
	}

	var body strings.Builder
	if m.Text != "" {
		fmt.Fprintf(&body, `<p style="white-space: pre-line">%s</p>`, formatText(m.Text, m.Entities))
	}
	r.attachments(&body, p, m)

	entry.Body = body.String()
	if m.Forward != nil {
		entry.Body = wrapForward(r.origin(ctx, m.Forward), entry.Body)
	}

	if m.IsService() {
		r.service(entry, p, m, author)
	}

	return entry
}

func title(m *message.Message) string {
	if m.Text == "" {
		return m.Date.Format(domain.TitleDateLayout)
	}
	if utf8.RuneCountInString(m.Text) > titleLength {
		return string([]rune(m.Text)[:titleLength]) + "…"
	}
	return m.Text
}

func (r *Renderer) author(ctx context.Context, m *message.Message) string {
	switch {
	case m.Post:
		name := r.name(ctx, m.Peer)
		if m.PostAuthor != "" {
			return fmt.Sprintf("%s (%s)", name, m.PostAuthor)
		}
		return name
	case m.From != nil:
		return r.name(ctx, *m.From)
	default:
		return unknownAuthor
	}
}

func (r *Renderer) name(ctx context.Context, ref peer.Ref) string {
	id, err := r.identities.Resolve(ctx, ref)
	switch {
	case err != nil:
		r.logger.WarnContext(ctx, "Failed to resolve author", "peer", ref.String(), "error", err)
		return unknownAuthor
	case id.Denied:
		return privateChannel
	default:
		return id.Name
	}
}

// attachments appends the markup of the message media. Each branch is
// checked on its own.
func (r *Renderer) attachments(body *strings.Builder, p peer.Peer, m *message.Message) {
	src := r.links.Media(p, m.ID, "")
	poster := r.links.Media(p, m.ID, "1")

	switch media := m.Media.(type) {
	case *message.Photo:
		fmt.Fprintf(body, `<img src="%s" />`, src)

	case *message.Document:
		switch media.Kind {
		case message.DocumentKindSticker:
			fmt.Fprintf(body, `<img src="%s" />`, src)
		case message.DocumentKindGif:
			fmt.Fprintf(body, `<video%s height="auto" poster="%s" loop autoplay><source src="%s" type="%s" /></video>`,
				widthAttr(media.Width), poster, src, html.EscapeString(media.MimeType))
		case message.DocumentKindVideo:
			fmt.Fprintf(body, `<video%s height="auto" poster="%s" controls=1><source src="%s" type="%s" /></video>`,
				widthAttr(min(media.Width, maxVideoWidth)), poster, src, html.EscapeString(media.MimeType))
		default:
			if strings.HasPrefix(media.MimeType, "image/") {
				fmt.Fprintf(body, `<img src="%s" />`, src)
				return
			}
			name := media.FileName
			if name == "" {
				name = message.DefaultFileName(peer.Label(p), m.ID, ".bin")
			}
			fmt.Fprintf(body, `<p><a href="%s">%s</a></p>`, src, html.EscapeString(name))
		}

	case *message.WebPage:
		body.WriteString("<blockquote><p>")
		fmt.Fprintf(body, "<b>%s</b>", html.EscapeString(media.SiteName))
		if media.Author != "" {
			fmt.Fprintf(body, " (%s)", html.EscapeString(media.Author))
		}
		fmt.Fprintf(body, "<br/>%s<br/>%s</p>", html.EscapeString(media.Title), html.EscapeString(media.Description))
		if media.Photo != nil {
			fmt.Fprintf(body, `<br/><img src="%s" />`, src)
		}
		body.WriteString("</blockquote>")
	}
}

func widthAttr(w int) string {
	if w <= 0 {
		return ""
	}
	return fmt.Sprintf(` width="%d"`, w)
}

// wrapForward quotes everything rendered so far
func wrapForward(origin, body string) string {
	return fmt.Sprintf("<p>Forwarded from %s:</p><blockquote>%s</blockquote>", origin, body)
}

// origin renders the "X" of "Forwarded from X".
func (r *Renderer) origin(ctx context.Context, fwd *message.Forward) string {
	if fwd.From != nil {
		id, err := r.identities.Resolve(ctx, *fwd.From)
		switch {
		case err == nil && id.Denied:
			name := fwd.FromName
			if name == "" {
				name = id.Name
			}
			if name == "" {
				name = fmt.Sprintf("%d", fwd.From.ID)
			}
			return fmt.Sprintf("%s (%s)", html.EscapeString(name), privateChannel)
		case err == nil:
			link := r.links.PeerURL(id.Peer)
			if fwd.ChannelPost != 0 {
				link = r.links.Permalink(id.Peer, fwd.ChannelPost)
			}
			return fmt.Sprintf(`<a href="%s">%s</a>`, link, html.EscapeString(id.Name))
		default:
			r.logger.WarnContext(ctx, "Failed to resolve forward origin", "peer", fwd.From.String(), "error", err)
		}
	}

	if fwd.FromName != "" {
		return html.EscapeString(fwd.FromName)
	}
	return unknownSource
}

// service applies the description of a service message
func (r *Renderer) service(entry *domain.Entry, p peer.Peer, m *message.Message, author string) {
	switch action := m.Action.(type) {
	case *message.PinMessage:
		entry.Title = fmt.Sprintf("%s pinned a message", author)
		entry.Body += fmt.Sprintf(`<p>%s pinned <a href="%s">a message</a></p>`,
			html.EscapeString(author), r.links.Permalink(p, action.MessageID))
	case *message.ChatEditPhoto:
		entry.Title = "Channel photo updated"
		entry.Body += fmt.Sprintf(`<img src="%s" />`, r.links.Media(p, m.ID, ""))
	case *message.ChannelCreate:
		entry.Title = "Channel created"
		entry.Body += fmt.Sprintf("<p>Channel created: %s</p>", html.EscapeString(action.Title))
	}
}
