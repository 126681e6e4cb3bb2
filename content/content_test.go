package content

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"scribe/config"
	"scribe/markup"
	"scribe/state"
)

func setupContext(t *testing.T) (context.Context, *zap.Logger) {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = log
	return ctx, log
}

func TestMeta_CoverLines(t *testing.T) {
	tests := []struct {
		name string
		meta Meta
		want []string
	}{
		{
			name: "defaults",
			meta: DefaultMeta(),
			want: []string{
				"Student Name: Student Name",
				"Registration Number: N/A",
				"Instructor Name: Instructor",
				"Semester: N/A",
				"University: University",
			},
		},
		{
			name: "empty values skipped",
			meta: Meta{Title: "T", Student: "Ann Lee", Semester: "Fall 2025"},
			want: []string{"Student Name: Ann Lee", "Semester: Fall 2025"},
		},
		{name: "nothing", meta: Meta{Title: "only title"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.CoverLines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CoverLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMeta_Subject(t *testing.T) {
	tests := []struct {
		meta Meta
		want string
	}{
		{meta: Meta{Title: "Essay", University: "MIT"}, want: "Essay - MIT"},
		{meta: Meta{Title: "Essay"}, want: "Essay"},
		{meta: Meta{University: "MIT"}, want: "MIT"},
		{meta: Meta{}, want: ""},
	}
	for _, tt := range tests {
		if got := tt.meta.Subject(); got != tt.want {
			t.Errorf("Subject(%+v) = %q, want %q", tt.meta, got, tt.want)
		}
	}
}

func TestMeta_Normalize(t *testing.T) {
	got := Meta{Title: "  Essay\n", Student: "\tAnn "}.Normalize()
	if got.Title != "Essay" || got.Student != "Ann" {
		t.Errorf("Normalize() = %+v", got)
	}
}

func TestPrepare(t *testing.T) {
	ctx, log := setupContext(t)

	body := "# Intro\r\n\r\nCafe\u0301 culture.\r\n- one\r\n- two\r\n"
	a, err := Prepare(ctx, DefaultMeta(), body, nil, "notes.md", log)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if strings.Contains(a.Body, "\r") {
		t.Error("Body still has carriage returns")
	}
	if !strings.Contains(a.Body, "Caf\u00e9 culture.") {
		t.Errorf("Body is not NFC normalized: %q", a.Body)
	}

	wantKinds := []markup.Kind{markup.KindHeading, markup.KindBlank, markup.KindParagraph, markup.KindUnorderedItem, markup.KindUnorderedItem}
	var kinds []markup.Kind
	for _, b := range a.Blocks() {
		kinds = append(kinds, b.Kind)
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Errorf("Blocks() kinds = %v, want %v", kinds, wantKinds)
	}

	if a.Logo != nil {
		t.Error("logo prepared although none given")
	}
	if a.ID.Version() != 7 {
		t.Errorf("ID version = %d, want 7", a.ID.Version())
	}

	if _, err := os.Stat(a.WorkDir); err != nil {
		t.Fatalf("work directory not created: %v", err)
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(a.WorkDir); !os.IsNotExist(err) {
		t.Error("Release() did not remove work directory")
	}

	dump := a.String()
	for _, want := range []string{"assignment id=", "cover: \"Student Name: Student Name\"", "blocks: 5", "heading n=1 level=1"} {
		if !strings.Contains(dump, want) {
			t.Errorf("String() does not contain %q:\n%s", want, dump)
		}
	}
}

func TestPrepare_Logo(t *testing.T) {
	ctx, log := setupContext(t)
	env := state.EnvFromContext(ctx)

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewGray(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	env.Logo = buf.Bytes()

	a, err := Prepare(ctx, Meta{}, "text", nil, "", log)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer a.Release(ctx)
	if a.Logo == nil || a.Logo.Width != 40 || a.Logo.Height != 20 {
		t.Errorf("default logo not used: %+v", a.Logo)
	}

	// broken explicit logo is skipped, not fatal
	b, err := Prepare(ctx, Meta{}, "text", []byte("not an image"), "", log)
	if err != nil {
		t.Fatalf("Prepare() with broken logo error = %v", err)
	}
	defer b.Release(ctx)
	if b.Logo != nil {
		t.Error("broken logo must be skipped")
	}
}

func TestPrepare_Canceled(t *testing.T) {
	ctx, log := setupContext(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := Prepare(ctx, Meta{}, "text", nil, "", log); err == nil {
		t.Error("expected error for canceled context")
	}
}
