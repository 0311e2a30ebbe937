// Package bot wires the download pipeline to Discord: one slash command in,
// one video file (or a short failure message) out.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/fetchclip/fetchclip/internal/config"
	"github.com/fetchclip/fetchclip/internal/domain"
	"github.com/fetchclip/fetchclip/internal/media"
	"github.com/fetchclip/fetchclip/internal/metrics"
	"github.com/fetchclip/fetchclip/internal/queue"
	"github.com/fetchclip/fetchclip/internal/resolve"
	"github.com/fetchclip/fetchclip/internal/workspace"
)

const commandName = "download"

// Bot is the Discord-facing surface of the downloader.
type Bot struct {
	session    *discordgo.Session
	cfg        *config.Config
	resolver   *resolve.Resolver
	workspaces *workspace.Manager
	dispatcher *queue.Dispatcher
	limiter    *RateLimiter

	// pending maps job IDs to the interactions awaiting their result.
	pending   map[string]*discordgo.Interaction
	pendingMu sync.Mutex
}

// New creates the bot and its worker dispatcher. Call Start to connect.
func New(cfg *config.Config, resolver *resolve.Resolver, workspaces *workspace.Manager) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	b := &Bot{
		session:    session,
		cfg:        cfg,
		resolver:   resolver,
		workspaces: workspaces,
		limiter:    NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst),
		pending:    make(map[string]*discordgo.Interaction),
	}
	b.dispatcher = queue.NewDispatcher(cfg.Workers, cfg.QueueSize, b.process)

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.Identify.Intents = discordgo.IntentsGuilds

	return b, nil
}

// Start opens the gateway connection and launches the workers.
func (b *Bot) Start(ctx context.Context) error {
	b.dispatcher.Start(ctx)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Stop disconnects and drains the worker pool.
func (b *Bot) Stop() {
	b.dispatcher.Stop()
	b.limiter.Stop()
	if err := b.session.Close(); err != nil {
		slog.Warn("Error closing discord session", "error", err)
	}
}

// QueueSize reports the number of downloads waiting for a worker.
func (b *Bot) QueueSize() int { return b.dispatcher.QueueSize() }

// WorkerCount reports the download worker pool size.
func (b *Bot) WorkerCount() int { return b.dispatcher.WorkerCount() }

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	_, err := s.ApplicationCommandCreate(r.User.ID, "", &discordgo.ApplicationCommand{
		Name:        commandName,
		Description: "Download a video from a public URL",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "The public video URL to download",
				Required:    true,
			},
		},
	})
	if err != nil {
		slog.Error("Failed to register slash command", "error", err)
		return
	}
	slog.Info("Bot is ready", "user", r.User.Username, "id", r.User.ID)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	url := commandURL(data)
	userID := interactionUserID(i)

	if !media.IsValidURL(url) {
		metrics.CommandsReceived.WithLabelValues("invalid_url").Inc()
		b.respondEphemeral(i, "Please provide a valid HTTP or HTTPS URL.")
		return
	}

	if !b.limiter.Allow(userID) {
		metrics.CommandsReceived.WithLabelValues("rate_limited").Inc()
		b.respondEphemeral(i, "You are sending downloads too quickly. Please wait a moment.")
		return
	}

	// Resolution can take minutes; acknowledge now, deliver via followup.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		slog.Error("Failed to acknowledge interaction", "error", err)
		return
	}

	job := domain.NewJob(uuid.NewString(), url, userID)

	b.pendingMu.Lock()
	b.pending[job.ID] = i.Interaction
	b.pendingMu.Unlock()

	if err := b.dispatcher.Enqueue(job); err != nil {
		metrics.CommandsReceived.WithLabelValues("queue_full").Inc()
		b.takePending(job.ID)
		b.followup(i.Interaction, "The bot is busy right now. Please try again in a minute.")
		return
	}

	metrics.CommandsReceived.WithLabelValues("accepted").Inc()
	slog.Info("Download requested", "job_id", job.ID, "url", url, "user_id", userID)
}

// process runs on a dispatcher worker. One failed or panicking job must never
// take the process down with it.
func (b *Bot) process(ctx context.Context, job *domain.Job) {
	interaction := b.takePending(job.ID)
	if interaction == nil {
		slog.Warn("No pending interaction for job", "job_id", job.ID)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing job", "job_id", job.ID, "panic", r)
			b.followup(interaction, "Something went wrong while downloading that video.")
		}
	}()

	ws, err := b.workspaces.Acquire()
	if err != nil {
		slog.Error("Failed to create workspace", "job_id", job.ID, "error", err)
		b.followup(interaction, "Something went wrong while downloading that video.")
		return
	}
	// The workspace spans delivery, not just download: the file is read
	// during upload and must survive until then.
	defer ws.Release()

	m, err := b.resolver.Resolve(ctx, job.URL, ws.Dir())
	if err != nil {
		b.followup(interaction, "Could not download a video from that URL. "+
			"The site may not be supported or the video may be private.")
		return
	}

	if m.Size > b.cfg.MaxFileSizeBytes {
		b.followup(interaction, fmt.Sprintf(
			"The downloaded video is too large to upload (%.1f MB, limit is %d MB).",
			float64(m.Size)/1024/1024, b.cfg.MaxFileSizeMB,
		))
		return
	}

	b.deliver(interaction, job, m)
}

func (b *Bot) deliver(interaction *discordgo.Interaction, job *domain.Job, m *domain.Media) {
	f, err := openMedia(m.Path)
	if err != nil {
		slog.Error("Failed to open downloaded file", "job_id", job.ID, "path", m.Path, "error", err)
		b.followup(interaction, "Something went wrong while downloading that video.")
		return
	}
	defer f.Close()

	_, err = b.session.FollowupMessageCreate(interaction, true, &discordgo.WebhookParams{
		Content: fmt.Sprintf("Here is your video from <%s>:", job.URL),
		Files: []*discordgo.File{
			{
				Name:        f.name,
				ContentType: media.ContentType(m.Path),
				Reader:      f,
			},
		},
	})
	if err != nil {
		slog.Error("Failed to upload video", "job_id", job.ID, "error", err)
		b.followup(interaction, "The video downloaded but could not be uploaded to Discord.")
		return
	}

	metrics.BytesDelivered.Add(float64(m.Size))
	slog.Info("Video delivered", "job_id", job.ID, "url", job.URL, "size", m.Size)
}

func (b *Bot) takePending(jobID string) *discordgo.Interaction {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	interaction := b.pending[jobID]
	delete(b.pending, jobID)
	return interaction
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, msg string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("Failed to send ephemeral response", "error", err)
	}
}

func (b *Bot) followup(interaction *discordgo.Interaction, msg string) {
	_, err := b.session.FollowupMessageCreate(interaction, true, &discordgo.WebhookParams{
		Content: msg,
	})
	if err != nil {
		slog.Warn("Failed to send followup", "error", err)
	}
}

// commandURL pulls the url option out of the command data.
func commandURL(data discordgo.ApplicationCommandInteractionData) string {
	for _, opt := range data.Options {
		if opt.Name == "url" {
			return opt.StringValue()
		}
	}
	return ""
}

// interactionUserID works for both guild and DM invocations.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
