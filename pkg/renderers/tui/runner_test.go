package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/options"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/session"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/testsupport"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/trigger"
)

const (
	registrationFixture = "../../parser/testdata/registration.json"
	vehicleFixture      = "../../parser/testdata/vehicle.json"
)

// stubDriver replays scripted answers. A blank input or a negative select
// index accepts the prompt default, like pressing enter in a terminal.
type stubDriver struct {
	t        *testing.T
	inputs   []string
	confirms []bool
	selects  []int
	multi    [][]int
	infos    []string
	prompts  []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.inputs) == 0 {
		s.t.Fatalf("unexpected input prompt %q", cfg.Message)
	}
	answer := s.inputs[0]
	s.inputs = s.inputs[1:]
	if answer == "" {
		answer = cfg.Default
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			s.t.Fatalf("scripted answer %q rejected: %v", answer, err)
		}
	}
	return answer, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.confirms) == 0 {
		s.t.Fatalf("unexpected confirm prompt %q", cfg.Message)
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.selects) == 0 {
		s.t.Fatalf("unexpected select prompt %q", cfg.Message)
	}
	answer := s.selects[0]
	s.selects = s.selects[1:]
	if answer < 0 {
		answer = cfg.DefaultIndex
	}
	return answer, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.multi) == 0 {
		s.t.Fatalf("unexpected multi select prompt %q", cfg.Message)
	}
	answer := s.multi[0]
	s.multi = s.multi[1:]
	return answer, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	return s.Input(context.Background(), InputConfig{Message: cfg.Message, Default: cfg.Default})
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func (s *stubDriver) assertDrained() {
	s.t.Helper()
	if len(s.inputs)+len(s.confirms)+len(s.selects)+len(s.multi) != 0 {
		s.t.Fatalf("unused scripted answers: inputs=%v confirms=%v selects=%v multi=%v",
			s.inputs, s.confirms, s.selects, s.multi)
	}
}

func TestRunRegistrationRepromptsInvalidField(t *testing.T) {
	ctx := testsupport.Context(t)
	def := testsupport.MustLoadDefinition(t, registrationFixture)
	s := session.New(def, session.WithTriggerOptions(trigger.WithSequentialDispatch()))
	defer s.Close()

	driver := &stubDriver{t: t, inputs: []string{"J", "Jane", "", "0712 345", "+254712345678"}}
	runner := New(WithPromptDriver(driver))

	got, err := runner.Run(ctx, s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := map[string]map[string]any{
		"personal": {"first_name": "Jane", "last_name": "Doe"},
		"contact":  {"phone_number": "+254712345678"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
	driver.assertDrained()

	wantInfos := []string{
		"== Personal Details",
		"! First Name must be at least 2 characters",
		"== Contact",
		"! Invalid Phone Number",
	}
	if diff := cmp.Diff(wantInfos, driver.infos); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if driver.prompts[0] != "First Name *" {
		t.Fatalf("expected required marker on label, got %q", driver.prompts[0])
	}
}

func TestRunVehicleListing(t *testing.T) {
	ctx := testsupport.Context(t)
	fetcher := options.Static{
		"http://x/models?make=Toyota": {{ID: 1, Value: "Corolla"}, {ID: 2, Value: "Camry"}},
	}
	s := session.New(testsupport.MustLoadDefinition(t, vehicleFixture), session.WithFetcher(fetcher))
	defer s.Close()

	photo := filepath.Join(t.TempDir(), "car.png")
	if err := os.WriteFile(photo, []byte("png"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	driver := &stubDriver{
		t:       t,
		selects: []int{0, 1, -1},
		inputs:  []string{"", "50", "25000", photo},
		multi:   [][]int{{0, 2}},
	}
	runner := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "error: "}))

	got, err := runner.Run(ctx, s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	driver.assertDrained()

	vehicle := got["vehicle"]
	if vehicle["make"] != 1 || vehicle["model"] != 2 || vehicle["condition"] != 1 {
		t.Fatalf("unexpected vehicle step values %v", vehicle)
	}
	if vehicle["year"] != "2020" {
		t.Fatalf("expected default year to be accepted, got %#v", vehicle["year"])
	}

	pricing := got["pricing"]
	if pricing["price"] != 25000.0 {
		t.Fatalf("expected numeric price, got %#v", pricing["price"])
	}
	if diff := cmp.Diff([]any{1, 3}, pricing["extras"]); diff != "" {
		t.Fatalf("extras mismatch (-want +got):\n%s", diff)
	}
	res, ok := pricing["photo"].(*session.Resource)
	if !ok || res.Path != photo || res.MimeType != "image/png" {
		t.Fatalf("unexpected photo value %#v", pricing["photo"])
	}

	var sawPriceError bool
	for _, msg := range driver.infos {
		if msg == "error: Price must be at least 100" {
			sawPriceError = true
		}
	}
	if !sawPriceError {
		t.Fatalf("expected price error among infos %v", driver.infos)
	}
}

func TestRunUsesConfiguredCapturer(t *testing.T) {
	ctx := testsupport.Context(t)
	fetcher := options.Static{
		"http://x/models?make=Honda": {{ID: 1, Value: "Civic"}},
	}
	var captured []string
	capturer := session.CapturerFunc(func(_ context.Context, field model.Field) (*session.Resource, error) {
		captured = append(captured, field.Name)
		return &session.Resource{Path: "/media/" + field.Name + ".jpg"}, nil
	})
	s := session.New(testsupport.MustLoadDefinition(t, vehicleFixture),
		session.WithFetcher(fetcher), session.WithCapturer(capturer))
	defer s.Close()

	driver := &stubDriver{
		t:       t,
		selects: []int{1, 0, -1},
		inputs:  []string{"", "9000"},
		multi:   [][]int{nil},
	}
	got, err := New(WithPromptDriver(driver)).Run(ctx, s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	driver.assertDrained()

	if diff := cmp.Diff([]string{"photo"}, captured); diff != "" {
		t.Fatalf("capture calls mismatch (-want +got):\n%s", diff)
	}
	if _, ok := got["pricing"]["extras"]; !ok || got["pricing"]["extras"] != nil {
		t.Fatalf("expected empty extras to be submitted as nil, got %#v", got["pricing"]["extras"])
	}
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := testsupport.Context(t)
	failing := options.FetcherFunc(func(context.Context, string) ([]model.Option, error) {
		return nil, errors.New("network down")
	})
	s := session.New(testsupport.MustLoadDefinition(t, vehicleFixture), session.WithFetcher(failing))
	defer s.Close()

	driver := &stubDriver{t: t, selects: []int{0}}
	_, err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Run(ctx, s)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if !strings.Contains(err.Error(), "model") {
		t.Fatalf("expected the failing field in the error, got %v", err)
	}

	var notices int
	for _, msg := range driver.infos {
		if msg == "No options available for Model" {
			notices++
		}
	}
	if notices != 2 {
		t.Fatalf("expected two missing option notices, got %d in %v", notices, driver.infos)
	}
}

func TestEncodeFormats(t *testing.T) {
	values := map[string]map[string]any{
		"contact": {"phone": "+254712345678"},
		"extras":  {"ids": []any{1, 3}, "photo": &session.Resource{Path: "/tmp/a.png"}, "note": nil},
	}

	pretty, err := Encode(values, OutputFormatPrettyText)
	if err != nil {
		t.Fatalf("encode pretty: %v", err)
	}
	wantPretty := "contact.phone=+254712345678\nextras.ids[0]=1\nextras.ids[1]=3\nextras.note=\nextras.photo=/tmp/a.png\n"
	if diff := cmp.Diff(wantPretty, string(pretty)); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}

	form, err := Encode(values, OutputFormatFormURLEncoded)
	if err != nil {
		t.Fatalf("encode form: %v", err)
	}
	wantForm := "contact.phone=%2B254712345678&extras.ids%5B%5D=1&extras.ids%5B%5D=3&extras.note=&extras.photo=%2Ftmp%2Fa.png"
	if string(form) != wantForm {
		t.Fatalf("form = %q, want %q", form, wantForm)
	}

	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
	if format, err := ParseOutputFormat(" JSON "); err != nil || format != OutputFormatJSON {
		t.Fatalf("ParseOutputFormat(JSON) = %q, %v", format, err)
	}
}

func TestRunBoundsBlockedStepWithoutInvalidFields(t *testing.T) {
	ctx := testsupport.Context(t)
	def := model.FormDefinition{
		FormName: "Empty",
		Steps:    []model.Step{{ID: 1, Name: "empty", Title: "Nothing here"}},
	}
	s := session.New(def)
	defer s.Close()

	driver := &stubDriver{t: t}
	_, err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Run(ctx, s)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if diff := cmp.Diff([]string{"== Nothing here", "== Nothing here"}, driver.infos); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}
