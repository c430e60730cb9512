package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
)

type stubImageService struct {
	processFn func(ctx context.Context, in ports.ProcessImageInput) (*ports.ProcessImageResult, error)
	healthErr error
}

func (s *stubImageService) ProcessImage(ctx context.Context, in ports.ProcessImageInput) (*ports.ProcessImageResult, error) {
	return s.processFn(ctx, in)
}

func (s *stubImageService) Effects() []domain.Effect {
	return domain.Effects()
}

func (s *stubImageService) Health(context.Context) (*ports.ServiceHealth, error) {
	if s.healthErr != nil {
		return nil, s.healthErr
	}
	return &ports.ServiceHealth{Status: "healthy", AvailableEffects: 3, Timestamp: time.Unix(0, 0).UTC()}, nil
}

func processContext(body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/api/images/process", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestImageHandler_Process_Success(t *testing.T) {
	stub := &stubImageService{
		processFn: func(_ context.Context, in ports.ProcessImageInput) (*ports.ProcessImageResult, error) {
			if in.UserID != "u1" || in.Effect != "acros_bw" || in.Image != "data:image/png;base64,aGk=" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Metadata["format"] != "png" {
				t.Fatalf("metadata not forwarded: %+v", in.Metadata)
			}
			return &ports.ProcessImageResult{
				ProcessedImage: "data:image/jpeg;base64,b3V0",
				ProcessingTime: 1500 * time.Millisecond,
				EffectApplied:  "acros_bw",
				Quota:          domain.EvaluateQuota(domain.TierFree, 1),
			}, nil
		},
	}
	handler := NewImageHandler(stub, zerolog.Nop())

	c, rec := processContext(`{"image":"data:image/png;base64,aGk=","effect":"acros_bw","metadata":{"format":"png"}}`, "u1")
	if err := handler.Process(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool                 `json:"success"`
		Data    processImageResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	d := resp.Data
	if !resp.Success || d.EffectApplied != "acros_bw" || d.ProcessedImage != "data:image/jpeg;base64,b3V0" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if d.ProcessingTime != 1.5 {
		t.Fatalf("expected processingTime 1.5s, got %v", d.ProcessingTime)
	}
	if d.User.Tier != domain.TierFree || d.User.ImageCount != 1 || d.User.Remaining != 4 {
		t.Fatalf("unexpected quota view: %+v", d.User)
	}
}

func TestImageHandler_Process_RejectsBeforeService(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"missing effect", `{"image":"data:image/png;base64,aGk="}`, domain.ErrMissingParameters},
		{"missing image", `{"effect":"acros_bw"}`, domain.ErrMissingParameters},
		{"no data prefix", `{"image":"aGk=","effect":"acros_bw"}`, domain.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubImageService{
				processFn: func(context.Context, ports.ProcessImageInput) (*ports.ProcessImageResult, error) {
					t.Fatalf("service must not be called")
					return nil, nil
				},
			}
			handler := NewImageHandler(stub, zerolog.Nop())

			c, _ := processContext(tt.body, "u1")
			if err := handler.Process(c); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestImageHandler_Process_InvalidJSON(t *testing.T) {
	handler := NewImageHandler(&stubImageService{}, zerolog.Nop())

	c, _ := processContext(`not-json`, "u1")
	err := handler.Process(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestImageHandler_Process_ServiceErrorPropagates(t *testing.T) {
	quotaErr := domain.NewQuotaError(domain.EvaluateQuota(domain.TierFree, 5))
	stub := &stubImageService{
		processFn: func(context.Context, ports.ProcessImageInput) (*ports.ProcessImageResult, error) {
			return nil, quotaErr
		},
	}
	handler := NewImageHandler(stub, zerolog.Nop())

	c, _ := processContext(`{"image":"data:image/png;base64,aGk=","effect":"acros_bw"}`, "u1")
	if err := handler.Process(c); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestImageHandler_Process_RequiresUser(t *testing.T) {
	handler := NewImageHandler(&stubImageService{}, zerolog.Nop())

	c, _ := processContext(`{"image":"data:image/png;base64,aGk=","effect":"acros_bw"}`, "")
	if err := handler.Process(c); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestImageHandler_Effects(t *testing.T) {
	handler := NewImageHandler(&stubImageService{}, zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/images/effects", nil), rec)

	if err := handler.Effects(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data struct {
			Effects []map[string]any `json:"effects"`
			Count   int              `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data.Count != 3 || len(resp.Data.Effects) != 3 {
		t.Fatalf("expected 3 effects, got %+v", resp.Data)
	}
	for _, eff := range resp.Data.Effects {
		if _, leaked := eff["prompt"]; leaked {
			t.Fatalf("prompt must stay server-side: %+v", eff)
		}
		if eff["id"] == "" || eff["category"] == "" {
			t.Fatalf("incomplete effect: %+v", eff)
		}
	}
}

func TestImageHandler_Health(t *testing.T) {
	handler := NewImageHandler(&stubImageService{}, zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/images/health", nil), rec)

	if err := handler.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) || !strings.Contains(rec.Body.String(), `"availableEffects":3`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	broken := NewImageHandler(&stubImageService{healthErr: errors.New("no processor")}, zerolog.Nop())
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/images/health", nil), httptest.NewRecorder())
	if err := broken.Health(c); err == nil {
		t.Fatalf("expected error")
	}
}
