package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/charmbracelet/log"
)

type StateGetter interface {
	GetState(ctx context.Context, entityID string, v any) error
}

// GetEntity fetches an entity and decodes its attributes and state into A and S.
func GetEntity[A any, S any](ctx context.Context, g StateGetter, entityID string) (models.Entity[A, S], error) {
	var entity models.Entity[A, S]
	if err := g.GetState(ctx, entityID, &entity); err != nil {
		return entity, err
	}
	return entity, nil
}

type HassAPIService struct {
	logger  *log.Logger
	baseURL *url.URL
	token   string
	client  *http.Client
}

func NewHassAPIService(logger *log.Logger, baseURL string, token string, timeout time.Duration) (*HassAPIService, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid hub url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid hub url %q: scheme and host are required", baseURL)
	}

	return &HassAPIService{
		logger:  logger,
		baseURL: u,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (h *HassAPIService) BaseURL() *url.URL {
	u := *h.baseURL
	return &u
}

func (h *HassAPIService) Token() string {
	return h.token
}

func (h *HassAPIService) GET(ctx context.Context, path string) ([]byte, error) {
	return h.makeRequest(ctx, http.MethodGet, path, nil)
}

func (h *HassAPIService) POST(ctx context.Context, path string, body []byte) ([]byte, error) {
	return h.makeRequest(ctx, http.MethodPost, path, body)
}

// Ping checks that the API is up and the token is accepted.
func (h *HassAPIService) Ping(ctx context.Context) error {
	_, err := h.GET(ctx, constants.APIPath)
	return err
}

func (h *HassAPIService) GetState(ctx context.Context, entityID string, v any) error {
	body, err := h.GET(ctx, constants.StatesPath+entityID)
	if err != nil {
		return fmt.Errorf("error reading %s from hub: %w", entityID, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, entityID, err)
	}

	return nil
}

func (h *HassAPIService) GetCameraImage(ctx context.Context, camera string) (image.Image, error) {
	entityID := CameraEntityID(camera)

	body, err := h.GET(ctx, constants.CameraProxyPath+entityID)
	if err != nil {
		return nil, fmt.Errorf("error reading image of %s from hub: %w", entityID, err)
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageDecode, entityID, err)
	}
	h.logger.Debug("Fetched camera image", "camera", entityID, "format", format, "size", img.Bounds().Size())

	return img, nil
}

func (h *HassAPIService) SendEvent(ctx context.Context, event string) (models.EventResult, error) {
	result := models.EventResult{}

	body, err := h.POST(ctx, constants.EventsPath+event, nil)
	if err != nil {
		return result, fmt.Errorf("error firing event %s: %w", event, err)
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("%w: event %s: %w", ErrMalformedResponse, event, err)
	}

	return result, nil
}

// CameraEntityID accepts either "front" or "camera.front" and returns "camera.front".
func CameraEntityID(camera string) string {
	if strings.HasPrefix(camera, constants.CameraDomain+".") {
		return camera
	}
	return constants.CameraDomain + "." + camera
}

func (h *HassAPIService) makeRequest(ctx context.Context, verb string, path string, body []byte) ([]byte, error) {

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, verb, h.baseURL.JoinPath(path).String(), bodyReader)
	if err != nil {
		return nil, err
	}

	// set headers
	req.Header.Set("Authorization", "Bearer "+h.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// make the request
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.logger.Debug("Error making hub API call", "path", path, "status", resp.Status)
		return nil, &StatusError{StatusCode: resp.StatusCode, Method: verb, Path: path}
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return responseBody, nil
}
