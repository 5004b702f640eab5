package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/messages"
)

var ErrInvalidEvent = errors.New("invalid prediction event")

// DecodeEvent parses a PredictionEvent published on "{prefix}/{crop|error}".
// The crop falls back to the last topic level when the payload omits it.
func DecodeEvent(topic string, payload []byte) (messages.PredictionEvent, error) {
	var evt messages.PredictionEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return messages.PredictionEvent{}, errors.Wrap(ErrInvalidEvent, err.Error())
	}
	if strings.TrimSpace(evt.ID) == "" {
		return messages.PredictionEvent{}, errors.Wrap(ErrInvalidEvent, "missing id")
	}

	switch evt.Status {
	case messages.StatusOK:
		if evt.Crop == "" {
			evt.Crop = lastLevel(topic)
		}
		if evt.Crop == "" || evt.Crop == messages.StatusError {
			return messages.PredictionEvent{}, errors.Wrap(ErrInvalidEvent, "ok event without crop")
		}
	case messages.StatusError:
	default:
		return messages.PredictionEvent{}, errors.Wrapf(ErrInvalidEvent, "unknown status %q", evt.Status)
	}

	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	return evt, nil
}

func lastLevel(topic string) string {
	topic = strings.TrimRight(topic, "/")
	if i := strings.LastIndex(topic, "/"); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
