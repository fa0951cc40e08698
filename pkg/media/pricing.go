package media

import "fmt"

// Kind identifies a media generation class.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindMusic Kind = "music"
)

// Fixed prices in USD per generated item.
const (
	ImagePriceUSD = 0.18
	VideoPriceUSD = 1.96
	MusicPriceUSD = 0.68
)

// Duration bounds enforced by the generation service.
const (
	MusicMinSeconds = 30
	MusicMaxSeconds = 480
)

// VideoDurations lists the accepted video lengths in seconds.
var VideoDurations = []int{4, 6, 8}

// ImageAspectRatios lists the aspect ratios the image service accepts.
var ImageAspectRatios = []string{
	"1:1", "16:9", "9:16", "4:3", "3:4", "21:9", "9:21", "3:2", "2:3",
}

// Price returns the fixed per-item price for a media kind.
func Price(kind Kind) (float64, error) {
	switch kind {
	case KindImage:
		return ImagePriceUSD, nil
	case KindVideo:
		return VideoPriceUSD, nil
	case KindMusic:
		return MusicPriceUSD, nil
	default:
		return 0, fmt.Errorf("unknown media kind %q", kind)
	}
}

// EstimateCost returns the cost of generating count items of the given kind.
func EstimateCost(kind Kind, count int) (float64, error) {
	if count < 0 {
		return 0, fmt.Errorf("count must be non-negative, got %d", count)
	}
	price, err := Price(kind)
	if err != nil {
		return 0, err
	}
	return price * float64(count), nil
}

// ValidVideoDuration reports whether seconds is an accepted video length.
func ValidVideoDuration(seconds int) bool {
	for _, d := range VideoDurations {
		if seconds == d {
			return true
		}
	}
	return false
}

// ValidMusicDuration reports whether seconds is within the accepted track
// length range.
func ValidMusicDuration(seconds int) bool {
	return seconds >= MusicMinSeconds && seconds <= MusicMaxSeconds
}

// ValidAspectRatio reports whether ratio is accepted by the image service.
func ValidAspectRatio(ratio string) bool {
	for _, r := range ImageAspectRatios {
		if ratio == r {
			return true
		}
	}
	return false
}
