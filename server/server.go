// Package server is a web front end: source material upload and analysis,
// assignment generation, preview and download of documents.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"scribe/config"
	"scribe/content"
	"scribe/convert"
	"scribe/extract"
	"scribe/llm"
	"scribe/misc"
	"scribe/state"
)

//go:embed templates/*.html
var templatesFS embed.FS

// uploads larger than this are kept in temporary files while parsed
const formMemory = 8 << 20

type Server struct {
	ctx      context.Context
	env      *state.LocalEnv
	cfg      *config.ServerConfig
	pipeline *llm.Pipeline
	sessions *sessions
	history  *History
	md       goldmark.Markdown
	tmpl     *template.Template
	router   chi.Router
	log      *zap.Logger
}

// New creates server. History may be nil. Server owns history and closes it
// on Close.
func New(ctx context.Context, inv llm.Invoker, history *History, log *zap.Logger) (*Server, error) {
	env := state.EnvFromContext(ctx)

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("unable to parse page templates: %w", err)
	}

	s := &Server{
		ctx:      ctx,
		env:      env,
		cfg:      &env.Cfg.Server,
		pipeline: llm.NewPipeline(inv, env.Cfg.Assistant.MaxSourceChars, env.Rpt, log.Named("llm")),
		history:  history,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		tmpl:     tmpl,
		log:      log,
	}
	s.sessions = newSessions(s.cfg.SessionTTL, s.release)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(s.attachEnv)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/history", s.handleHistory)
	r.Get("/download/{format}", s.handleDownload)

	// endpoints calling language model
	r.Group(func(r chi.Router) {
		if n := s.cfg.RateLimit; n > 0 {
			r.Use(httprate.LimitByIP(n, time.Minute))
		}
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/generate", s.handleGenerate)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close drops all sessions and closes history.
func (s *Server) Close() error {
	s.sessions.drop()
	return s.history.Close()
}

func (s *Server) attachEnv(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(state.AttachEnv(r.Context(), s.env)))
	})
}

func (s *Server) release(a *content.Assignment) {
	if err := a.Release(s.ctx); err != nil {
		s.log.Warn("Unable to remove work directory", zap.String("dir", a.WorkDir), zap.Error(err))
	}
}

type pageData struct {
	App      string
	Version  string
	Error    string
	Session  *Session
	Meta     content.Meta
	Analysis template.HTML
	Preview  template.HTML
	Formats  []string
	Records  []Record
}

func (s *Server) page(sess *Session) *pageData {
	d := &pageData{
		App:     misc.GetAppName(),
		Version: misc.GetVersion(),
		Session: sess,
		Meta:    content.DefaultMeta(),
		Formats: config.OutputFmtNames(),
	}
	if sess == nil {
		return d
	}
	if len(sess.Analysis) > 0 {
		d.Analysis = s.markdown(sess.Analysis)
	}
	if sess.Assignment != nil {
		d.Meta = sess.Assignment.Meta
		d.Preview = s.markdown(sess.Assignment.Body)
	}
	return d
}

// markdown renders model output for preview, raw HTML in it is dropped.
func (s *Server) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		s.log.Warn("Unable to render preview", zap.Error(err))
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(buf.String())
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data *pageData) {
	buf := new(bytes.Buffer)
	if err := s.tmpl.ExecuteTemplate(buf, name, data); err != nil {
		s.log.Error("Unable to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "unable to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail reports error on the main page keeping session state visible.
func (s *Server) fail(w http.ResponseWriter, sess *Session, status int, msg string, err error) {
	if err != nil {
		s.log.Warn(msg, zap.Int("status", status), zap.Error(err))
	}
	d := s.page(sess)
	d.Error = msg
	s.render(w, status, "index", d)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessions.lookup(r)
	s.render(w, http.StatusOK, "index", s.page(sess))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"version":  misc.GetVersion(),
		"uptime":   s.env.Uptime().Round(time.Second).String(),
		"sessions": s.sessions.c.ItemCount(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	records, err := s.history.Recent()
	if err != nil {
		s.log.Error("Unable to read history", zap.Error(err))
		http.Error(w, "unable to read history", http.StatusInternalServerError)
		return
	}
	d := s.page(nil)
	d.Records = records
	s.render(w, http.StatusOK, "history", d)
}

// parseForm reads request form limiting its size, urlencoded forms are
// accepted as well as multipart ones.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)<<20)
	if err := r.ParseMultipartForm(formMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	return http.StatusOK, nil
}

// formFile returns content of uploaded file, nil when field is absent.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, hdr.Filename, nil
}

func modelStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.fromRequest(w, r)

	if status, err := s.parseForm(w, r); err != nil {
		s.fail(w, sess, status, "Unable to read uploaded form", err)
		return
	}
	data, name, err := formFile(r, "source")
	if err != nil {
		s.fail(w, sess, http.StatusBadRequest, "Unable to read uploaded document", err)
		return
	}
	if len(data) == 0 {
		s.fail(w, sess, http.StatusBadRequest, "Source document is required", nil)
		return
	}

	text, err := extract.Text(r.Context(), data, s.log.Named("extract"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		if extract.IsUnsupported(err) {
			status = http.StatusUnsupportedMediaType
		}
		s.fail(w, sess, status, "Unable to read text from the document", err)
		return
	}

	req := llm.Request{Source: text, Questions: r.FormValue("questions")}
	analysis, err := s.pipeline.Analyze(r.Context(), req)
	if err != nil {
		s.fail(w, sess, modelStatus(err), "Assistant was unable to analyze the document", err)
		return
	}

	next := &Session{
		ID:         sess.ID,
		SourceName: name,
		Source:     text,
		Questions:  req.Questions,
		Analysis:   analysis,
	}
	s.sessions.put(next)

	s.log.Info("Document analyzed", zap.String("session", next.ID), zap.String("source", name), zap.Int("chars", len(text)))
	s.render(w, http.StatusOK, "index", s.page(next))
}

// metaFromForm returns cover page metadata, fields absent from the form keep
// default values.
func metaFromForm(r *http.Request) content.Meta {
	meta := content.DefaultMeta()
	for name, field := range map[string]*string{
		"title":        &meta.Title,
		"student":      &meta.Student,
		"registration": &meta.Registration,
		"instructor":   &meta.Instructor,
		"semester":     &meta.Semester,
		"university":   &meta.University,
	} {
		if v, ok := r.PostForm[name]; ok && len(v) > 0 {
			*field = v[0]
		}
	}
	return meta
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.fromRequest(w, r)
	if len(sess.Source) == 0 {
		s.fail(w, sess, http.StatusBadRequest, "Analyze source document first", nil)
		return
	}

	if status, err := s.parseForm(w, r); err != nil {
		s.fail(w, sess, status, "Unable to read submitted form", err)
		return
	}
	logo, _, err := formFile(r, "logo")
	if err != nil {
		s.fail(w, sess, http.StatusBadRequest, "Unable to read uploaded logo", err)
		return
	}
	clarifications := r.FormValue("clarifications")

	body, err := s.pipeline.Assignment(r.Context(), llm.Request{
		Source:         sess.Source,
		Questions:      sess.Questions,
		Clarifications: clarifications,
	})
	if err != nil {
		s.fail(w, sess, modelStatus(err), "Assistant was unable to write the assignment", err)
		return
	}

	a, err := content.Prepare(r.Context(), metaFromForm(r), body, logo, convert.AssignmentName(sess.SourceName), s.log)
	if err != nil {
		s.fail(w, sess, http.StatusInternalServerError, "Unable to prepare assignment", err)
		return
	}

	next := *sess
	next.Clarifications = clarifications
	next.Assignment = a
	s.sessions.put(&next)

	rec := Record{ID: a.ID.String(), Title: a.Meta.Title, Student: a.Meta.Student, Source: sess.SourceName, Created: a.Created}
	if err := s.history.Add(rec); err != nil {
		s.log.Warn("Unable to store history record", zap.Error(err))
	}

	s.log.Info("Assignment generated", zap.String("session", next.ID), zap.Stringer("id", a.ID), zap.Int("blocks", len(a.Blocks())))
	s.render(w, http.StatusOK, "index", s.page(&next))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format, err := config.ParseOutputFmt(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, "unknown document format", http.StatusNotFound)
		return
	}
	sess, ok := s.sessions.lookup(r)
	if !ok || sess.Assignment == nil {
		http.Error(w, "nothing to download, generate assignment first", http.StatusNotFound)
		return
	}
	a := sess.Assignment

	buf := new(bytes.Buffer)
	if err := convert.Render(buf, a, format, &s.env.Cfg.Document, s.env.Styles); err != nil {
		s.log.Error("Unable to render document", zap.Stringer("format", format), zap.Error(err))
		http.Error(w, "unable to render document", http.StatusInternalServerError)
		return
	}

	name := convert.FileName(a, format, s.env)
	w.Header().Set("Content-Type", format.MimeType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// Run is "serve" command.
func Run(ctx context.Context, listen string) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("server")
	cfg := &env.Cfg.Server

	if len(listen) > 0 {
		cfg.Listen = listen
	}

	inv, err := llm.NewInvoker(&env.Cfg.Assistant, env.Log.Named("llm"))
	if err != nil {
		return fmt.Errorf("unable to create assistant client: %w", err)
	}

	var history *History
	if len(cfg.HistoryPath) > 0 {
		if history, err = OpenHistory(cfg.HistoryPath, cfg.HistorySize); err != nil {
			return err
		}
	}

	s, err := New(ctx, inv, history, log)
	if err != nil {
		return multierr.Append(err, history.Close())
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(log),
	}

	log.Info("Serving", zap.String("listen", "http://"+cfg.Listen), zap.Bool("history", history != nil))
	defer func(start time.Time) {
		log.Info("Serving completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err = <-errs:
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdown)
		<-errs
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}
