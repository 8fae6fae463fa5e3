// types.go - Request- und Response-Typen der sarcolor API
// Enthaelt: StatusError, ColorizeRequest/Response, UploadResponse,
// ModelsResponse, HistoryResponse, VersionResponse, Duration
package api

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	Code         string `json:"code,omitempty"`
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the sarcolor server logs for details"
	}
}

// ColorizeRequest is the request passed to [Client.Colorize].
type ColorizeRequest struct {
	// ImageID is the id of a source image in the bucket (sar_images/<id>).
	ImageID string `json:"image_id"`

	// Category forces a colorizer by name or numeric id and skips the
	// classifier.
	Category string `json:"category,omitempty"`

	// Upload stores the result under colorized_sar_images/<id> and returns
	// its URL instead of an inline data URL.
	Upload bool `json:"upload,omitempty"`
}

// LegacyColorizeRequest is the body accepted by POST /colorize.
type LegacyColorizeRequest struct {
	ImageURL string `json:"imageUrl"`
	ImageID  string `json:"imageId"`
}

// Swatch is one dominant color of a colorized image.
type Swatch struct {
	Hex    string  `json:"hex"`
	Weight float64 `json:"weight"`
}

// ColorizeResponse is the response returned by [Client.Colorize].
type ColorizeResponse struct {
	ID      string `json:"id"`
	ImageID string `json:"image_id"`

	// Image is a data:image/png;base64 URL, set when the result was not uploaded.
	Image string `json:"image,omitempty"`
	// URL is the public URL of the uploaded result.
	URL string `json:"url,omitempty"`

	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Path       string   `json:"path"`
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Classes    []string `json:"classes,omitempty"`
	Majority   string   `json:"majority"`
	Share      float64  `json:"share"`
	Override   bool     `json:"override"`
	Forced     bool     `json:"forced"`
	Inferences int      `json:"inferences"`
	Palette    []Swatch `json:"palette,omitempty"`
	Duration   Duration `json:"duration"`
}

// LegacyColorizeResponse is the body returned by POST /colorize.
type LegacyColorizeResponse struct {
	Message            string `json:"message"`
	ColorizedImageURL  string `json:"colorized_image_url,omitempty"`
	ColorizedImageData string `json:"colorized_image,omitempty"`
}

// UploadResponse is returned after storing a source image.
type UploadResponse struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Category describes one colorizer of the loaded model set.
type Category struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Backend string `json:"backend"`
	Default bool   `json:"default,omitempty"`
}

// ModelsResponse is the response from [Client.Models] and [Client.Reload].
type ModelsResponse struct {
	Classifier bool       `json:"classifier"`
	Default    string     `json:"default"`
	InputSize  int        `json:"input_size"`
	BlockSize  int        `json:"block_size"`
	Threshold  int        `json:"threshold"`
	Categories []Category `json:"categories"`
	Backends   []string   `json:"backends"`
}

// Job is one recorded colorize request.
type Job struct {
	ID         string    `json:"id"`
	ImageID    string    `json:"image_id"`
	Category   string    `json:"category,omitempty"`
	Path       string    `json:"path,omitempty"`
	Rows       int       `json:"rows,omitempty"`
	Cols       int       `json:"cols,omitempty"`
	Majority   string    `json:"majority,omitempty"`
	Override   bool      `json:"override"`
	Inferences int       `json:"inferences"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Duration   Duration  `json:"duration"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse is the response from [Client.History].
type HistoryResponse struct {
	Jobs []Job `json:"jobs"`
}

// VersionResponse is the response from [Client.Version].
type VersionResponse struct {
	Version string `json:"version"`
}

// Duration serialisiert als Go-Dauer-String ("1.5s"), Zahlen gelten als Sekunden
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	if d.Duration < 0 {
		return []byte("-1"), nil
	}
	return []byte("\"" + d.Duration.String() + "\""), nil
}

func (d *Duration) UnmarshalJSON(b []byte) (err error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case float64:
		if t < 0 {
			d.Duration = time.Duration(math.MaxInt64)
		} else {
			d.Duration = time.Duration(t * float64(time.Second))
		}
	case string:
		d.Duration, err = time.ParseDuration(t)
		if err != nil {
			return err
		}
		if d.Duration < 0 {
			d.Duration = time.Duration(math.MaxInt64)
		}
	default:
		return fmt.Errorf("Unsupported type: '%s'", reflect.TypeOf(v))
	}

	return nil
}
