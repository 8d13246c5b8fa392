// Package relay bridges one client progress subscription to the matching
// backend progress channel. Each relay runs as its own goroutine, owns both
// sockets for its job, and applies the image safety gate mid-stream once the
// job passes its step threshold.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/registry"
	"studio/internal/settings"
)

// upstreamErrorMessage is the single terminal error frame sent downstream
// when the backend channel fails.
const upstreamErrorMessage = "Error receiving job updates."

// SafetyChecker classifies a single generated frame. Implemented by
// providers/safety; faked in tests.
type SafetyChecker interface {
	Classify(ctx context.Context, cfg settings.SafetyCheckConfig, image string) (bool, error)
}

type Options struct {
	JobID    string
	Model    domain.Model
	Settings *settings.Store
	Registry *registry.Registry
	Safety   SafetyChecker
	Metrics  infra.Metrics
	Log      zerolog.Logger
}

type Relay struct {
	jobID    string
	model    domain.Model
	settings *settings.Store
	registry *registry.Registry
	safety   SafetyChecker
	metrics  infra.Metrics
	log      zerolog.Logger
}

func New(opts Options) *Relay {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = infra.NoopMetrics{}
	}
	return &Relay{
		jobID:    opts.JobID,
		model:    opts.Model,
		settings: opts.Settings,
		registry: opts.Registry,
		safety:   opts.Safety,
		metrics:  metrics,
		log:      opts.Log.With().Str("job_id", opts.JobID).Str("model", string(opts.Model)).Logger(),
	}
}

// UpstreamURL derives the backend progress channel address from the
// endpoint's HTTP URL: https upgrades to wss, http to ws, token carried as a
// query credential.
func UpstreamURL(ep settings.Endpoint, jobID string) string {
	scheme := "ws"
	if strings.HasPrefix(ep.URL, "https") {
		scheme = "wss"
	}
	host := strings.TrimPrefix(ep.URL, "https://")
	host = strings.TrimPrefix(host, "http://")
	return fmt.Sprintf("%s://%s/progress/%s?user_key=%s", scheme, host, jobID, url.QueryEscape(ep.Token))
}

// Run pumps upstream progress frames to the client in arrival order until a
// terminal event. The relay closes upstream before the client on a completed
// job, sends one structured error frame on upstream failure, and tears the
// upstream leg down as soon as the client disconnects, whatever state the
// job is in. There is deliberately no deadline on upstream reads: a silent,
// non-closing backend holds this relay open, and only this relay.
func (r *Relay) Run(ctx context.Context, client, upstream *websocket.Conn) {
	r.metrics.RelayOpened(string(r.model))
	defer r.metrics.RelayClosed(string(r.model))
	defer r.registry.Evict(r.jobID)
	defer client.Close()
	defer upstream.Close()

	clientClosed := make(chan struct{})
	go r.drainClient(client, clientClosed)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-clientClosed:
			// Unblocks the upstream read below.
			upstream.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := upstream.ReadMessage()
		if err != nil {
			select {
			case <-clientClosed:
				r.log.Debug().Msg("client disconnected, upstream closed")
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					r.log.Debug().Msg("upstream closed without completion")
				} else {
					r.log.Error().Err(err).Msg("upstream channel error")
					r.writeError(client, upstreamErrorMessage)
				}
			}
			return
		}

		msg, ok := r.process(ctx, raw)
		if !ok {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			r.log.Error().Err(err).Msg("dropping unencodable progress message")
			continue
		}
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
		if status, _ := msg["status"].(string); status == "completed" {
			r.log.Info().Msg("job completed, closing both channels")
			return
		}
	}
}

// process parses one upstream frame, stamps it with the job id, advances the
// job's threshold state, and applies the safety gate. It reports false when
// the frame must be dropped without terminating the relay.
func (r *Relay) process(ctx context.Context, raw []byte) (map[string]any, bool) {
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.log.Error().Err(err).Msg("dropping malformed upstream message")
		return nil, false
	}
	msg["job_id"] = r.jobID

	rec, ok := r.registry.Get(r.jobID)
	if !ok {
		r.log.Warn().Msg("no job record for progress message, dropping")
		return nil, false
	}

	if step, ok := msg["step"].(float64); ok && !rec.Job.PastThreshold &&
		float64(rec.Job.NumInferenceSteps)/2 < step {
		r.registry.Update(r.jobID, func(job *domain.Job) {
			job.PastThreshold = true
		})
		// Gating below must see the flip on this same frame.
		rec.Job.PastThreshold = true
	}

	if !r.settings.SafetyCheckEnabled() {
		return msg, true
	}
	image, hasImage := msg["image"].(string)
	if !hasImage || image == "" || !rec.Job.PastThreshold {
		return msg, true
	}

	unsafe, err := r.safety.Classify(ctx, r.settings.SafetyCheck(), image)
	if err != nil {
		r.log.Error().Err(err).Msg("safety check failed, dropping frame")
		return nil, false
	}
	if unsafe {
		msg["image_failed_check"] = true
		msg["image"] = SafeImage
		r.registry.Update(r.jobID, func(job *domain.Job) {
			job.ImageFailedCheck = true
		})
		r.metrics.IncFramesBlocked(string(r.model))
		r.log.Info().Msg("frame failed safety check, substituted placeholder")
	}
	return msg, true
}

// drainClient consumes inbound client messages. The channel is progress-only
// from the client's perspective, so frames are logged and discarded; the
// read error on disconnect is the close signal.
func (r *Relay) drainClient(client *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		_, data, err := client.ReadMessage()
		if err != nil {
			return
		}
		r.log.Debug().Str("data", string(data)).Msg("message from client")
	}
}

func (r *Relay) writeError(client *websocket.Conn, message string) {
	data, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return
	}
	_ = client.WriteMessage(websocket.TextMessage, data)
}
