package media

import "fmt"

// Tool names exposed by the VAP MCP proxy for media generation.
const (
	ToolGenerateImage = "generate_image"
	ToolGenerateVideo = "generate_video"
	ToolGenerateMusic = "generate_music"
)

// ValidateToolArgs checks generation arguments against the service limits
// before a request leaves the process. It satisfies bridge.ArgValidator.
// Tools it does not know about pass through untouched, and so do absent
// arguments: the proxy applies its own defaults for those.
func ValidateToolArgs(tool string, args map[string]interface{}) error {
	switch tool {
	case ToolGenerateVideo:
		if raw, present := args["duration"]; present {
			seconds, ok := intArg(raw)
			if !ok {
				return fmt.Errorf("video duration must be a whole number of seconds, got %v", raw)
			}
			if !ValidVideoDuration(seconds) {
				return fmt.Errorf("video duration must be one of %v seconds, got %d", VideoDurations, seconds)
			}
		}
	case ToolGenerateMusic:
		if raw, present := args["duration"]; present {
			seconds, ok := intArg(raw)
			if !ok {
				return fmt.Errorf("music duration must be a whole number of seconds, got %v", raw)
			}
			if !ValidMusicDuration(seconds) {
				return fmt.Errorf("music duration must be between %d and %d seconds, got %d",
					MusicMinSeconds, MusicMaxSeconds, seconds)
			}
		}
	case ToolGenerateImage:
		if ratio, ok := args["aspect_ratio"].(string); ok && !ValidAspectRatio(ratio) {
			return fmt.Errorf("aspect ratio must be one of %v, got %q", ImageAspectRatios, ratio)
		}
	}
	return nil
}

// intArg coerces a tool argument to int. JSON decoding produces float64, so
// whole-valued floats are accepted too.
func intArg(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
