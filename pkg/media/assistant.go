// Package media composes the VAP media assistant: the agent configuration
// that pairs a model and instruction payload with the VAP MCP proxy
// connection.
package media

import (
	"github.com/vapagentmedia/vap-agent/pkg/agent"
	"github.com/vapagentmedia/vap-agent/pkg/bridge"
	"github.com/vapagentmedia/vap-agent/pkg/config"
)

const (
	// DefaultModel drives the assistant unless overridden.
	DefaultModel = "gemini-2.5-flash"

	// AssistantName identifies the assistant to the runtime.
	AssistantName = "vap_media_assistant"
)

// Instructions is the assistant's fixed policy payload. The runtime treats
// it as an opaque string.
const Instructions = `You are VAP Media Assistant, an AI media generation specialist backed by VAP's MCP server.

CAPABILITIES:
- Generate AI images (Flux), 9 aspect ratios, high quality
- Generate AI videos (Veo 3.1), 4-8 seconds, 720p or 1080p
- Generate AI music (Suno V5), MP3 or WAV, 30-480 seconds
- Check task status and fetch results
- Estimate costs before generation
- Check account balance

PRICING:
- Images: $0.18 fixed per image
- Videos: $1.96 fixed per video (Veo 3.1)
- Music: $0.68 fixed per track

USAGE GUIDELINES:

For image generation:
- Ask for a prompt if none is provided
- Default aspect ratio is 1:1 (square)
- Available ratios: 1:1, 16:9, 9:16, 4:3, 3:4, 21:9, 9:21, 3:2, 2:3
- Detailed style descriptions give the best results

For video generation:
- Duration: 4, 6, or 8 seconds (default 8)
- Aspect ratio: 16:9 (landscape) or 9:16 (portrait)
- Resolution: 720p or 1080p (default 720p)
- Audio: can include AI-generated audio

For music generation:
- Duration: 30-480 seconds (default 120)
- Format: MP3 or WAV
- Describe genre, mood, instruments, and tempo

For cost estimation:
- Always offer to estimate costs before expensive operations
- Use estimate_video_cost for videos; image and music costs are fixed

For task status:
- Tasks take time to complete (30s-5min depending on type)
- Give the task_id to the user after creation
- Offer to check status periodically
- When complete, provide the download URL

IMPORTANT:
- If no API key is configured, warn the user and explain free tier limits
- Free tier: 3 images per day without an API key
- Always confirm expensive operations (videos $1.96, music $0.68)
- Be clear about generation times (images ~30s, videos ~2min, music ~1min)`

// Option customizes the assistant composition.
type Option func(*settings)

type settings struct {
	model string
	name  string
}

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithName overrides the assistant name.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// NewAssistantConfig builds the full agent configuration from the given
// environment: credentials and proxy path are resolved through lookup, the
// proxy connection descriptor is constructed, and the result is composed
// with the model and instruction payload. Single pass, no side effects;
// identical environment state yields structurally equal configs.
func NewAssistantConfig(lookup config.Lookup, opts ...Option) (*agent.Config, error) {
	s := settings{
		model: DefaultModel,
		name:  AssistantName,
	}
	for _, opt := range opts {
		opt(&s)
	}

	creds := config.ResolveCredentials(lookup)
	proxyPath := config.ResolveProxyPath(lookup)
	desc := bridge.NewProxyDescriptor(creds, proxyPath)

	return agent.New(s.name,
		agent.WithModel(s.model),
		agent.WithInstructions(Instructions),
		agent.WithToolset(desc),
	)
}
