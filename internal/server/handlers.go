package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"

	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/capability"
	"github.com/ironsheep/doc-tools-mcp/internal/document"
	"github.com/ironsheep/doc-tools-mcp/internal/editor"
	"github.com/ironsheep/doc-tools-mcp/internal/export"
	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

var (
	errUnknownTool  = errors.New("unknown tool")
	errInvalidArgs  = errors.New("invalid arguments")
	errNoCapability = errors.New("no AI capability is configured")
)

// Error kinds reported in the data of a failed tool call.
const (
	KindDecode     = "decode"
	KindExport     = "export"
	KindCapability = "capability"
	KindEditor     = "editor"
	KindInvalid    = "invalid"
	KindInternal   = "internal"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "editor_pointer").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ToolError is the data of a failed tool call.
type ToolError struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Unknown tools and malformed arguments return -32602. Tool execution
// errors return -32000 with a ToolError as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errUnknownTool) || errors.Is(err, errInvalidArgs) {
			return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		kind := errorKind(err)
		s.log.Warn("tool failed",
			zap.String("tool", params.Name),
			zap.String("kind", kind),
			zap.Error(err))
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", ToolError{Kind: kind, Error: err.Error()})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Images
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "image_edit":
		return s.handleImageEdit(ctx, args)

	// Editor sessions
	case "editor_open":
		return s.handleEditorOpen(ctx, args)
	case "editor_state":
		return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
			return sess.State(), nil
		})
	case "editor_rotate":
		return s.handleEditorRotate(args)
	case "editor_adjust":
		return s.handleEditorAdjust(args)
	case "editor_crop_mode":
		return s.handleEditorCropMode(args)
	case "editor_pointer":
		return s.handleEditorPointer(args)
	case "editor_viewport":
		return s.handleEditorViewport(args)
	case "editor_suggest_crop":
		return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
			return sess.SuggestCrop()
		})
	case "editor_reset":
		return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
			return sess.Reset()
		})
	case "editor_save":
		return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
			return sess.Save(ctx)
		})
	case "editor_close":
		return s.handleEditorClose(args)

	// Document tasks
	case "document_ocr":
		return s.handleDocumentText(ctx, args, (*document.Service).OCR)
	case "document_transcribe_handwriting":
		return s.handleDocumentText(ctx, args, (*document.Service).TranscribeHandwriting)
	case "document_extract_table":
		return s.handleDocumentExtractTable(ctx, args)
	case "document_extract_fields":
		return s.handleDocumentExtractFields(ctx, args)
	case "document_remove_handwriting":
		return s.handleDocumentRemoveHandwriting(ctx, args)

	// Exports
	case "export_pdf":
		return s.handleExportText(args, export.FormatPDF)
	case "export_word":
		return s.handleExportText(args, export.FormatWord)
	case "export_csv":
		return s.handleExportCSV(args)

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// errorKind classifies a tool failure.
func errorKind(err error) string {
	var (
		decodeErr *imaging.DecodeError
		exportErr *export.ExportError
		capErr    *capability.CapabilityError
	)
	switch {
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &exportErr):
		return KindExport
	case errors.As(err, &capErr), errors.Is(err, errNoCapability):
		return KindCapability
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrSessionClosed),
		errors.Is(err, editor.ErrTooManySessions),
		errors.Is(err, editor.ErrNotCropping),
		errors.Is(err, editor.ErrDragInProgress),
		errors.Is(err, editor.ErrInvalidViewport),
		errors.Is(err, editor.ErrUnknownPointer),
		errors.Is(err, imaging.ErrCropRequiresUpright):
		return KindEditor
	case errors.Is(err, imaging.ErrInvalidEdit),
		errors.Is(err, capability.ErrInvalidRequest),
		errors.Is(err, errInvalidArgs),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return KindInvalid
	}
	return KindInternal
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Empty arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// === Image source ===

// sourceArgs names an image by file path, inline base64, or the current
// image of an editor session. Exactly one must be set.
type sourceArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	SessionID   string `json:"session_id"`
}

func (a sourceArgs) count() int {
	n := 0
	for _, v := range []string{a.Path, a.ImageBase64, a.SessionID} {
		if v != "" {
			n++
		}
	}
	return n
}

// resolveSource returns the image named by a.
func (s *Server) resolveSource(a sourceArgs) (*imaging.ImageSource, error) {
	if a.count() != 1 {
		return nil, fmt.Errorf("%w: exactly one of path, image_base64 or session_id is required", errInvalidArgs)
	}
	switch {
	case a.SessionID != "":
		sess, err := s.editors.Get(a.SessionID)
		if err != nil {
			return nil, err
		}
		return sess.Source(), nil
	case a.Path != "":
		src, _, err := s.cache.Load(a.Path)
		return src, err
	default:
		return imaging.SourceFromBase64(a.ImageBase64, a.MimeType)
	}
}

// resolveDecoded returns the image named by a and its decoded surface.
// File paths go through the cache.
func (s *Server) resolveDecoded(ctx context.Context, a sourceArgs) (*imaging.ImageSource, *image.NRGBA, error) {
	if a.count() == 1 && a.Path != "" {
		return s.cache.Load(a.Path)
	}
	src, err := s.resolveSource(a)
	if err != nil {
		return nil, nil, err
	}
	img, err := imaging.Decode(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return src, img, nil
}

// === Image handlers ===

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	src, img, err := s.resolveDecoded(ctx, a)
	if err != nil {
		return nil, err
	}
	return imaging.Info(src, img), nil
}

type imageEditArgs struct {
	sourceArgs
	Rotation   int               `json:"rotation"`
	Brightness *int              `json:"brightness"`
	Contrast   *int              `json:"contrast"`
	Saturation *int              `json:"saturation"`
	Crop       *imaging.CropRect `json:"crop"`
}

func (s *Server) handleImageEdit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageEditArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	edit := imaging.Edit{
		Rotation: a.Rotation,
		Adjust:   applyAdjustArgs(imaging.IdentityAdjustment(), a.Brightness, a.Contrast, a.Saturation),
		Crop:     a.Crop,
	}
	if err := edit.Validate(); err != nil {
		return nil, err
	}

	src, img, err := s.resolveDecoded(ctx, a.sourceArgs)
	if err != nil {
		return nil, err
	}
	return s.pipeline.RunDecoded(img, src.MimeType(), edit)
}

func applyAdjustArgs(adj imaging.ColorAdjustment, brightness, contrast, saturation *int) imaging.ColorAdjustment {
	if brightness != nil {
		adj.Brightness = *brightness
	}
	if contrast != nil {
		adj.Contrast = *contrast
	}
	if saturation != nil {
		adj.Saturation = *saturation
	}
	return adj
}

// === Editor handlers ===

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// withSession resolves the session named in args and runs fn on it.
func (s *Server) withSession(args json.RawMessage, fn func(*editor.Session) (interface{}, error)) (interface{}, error) {
	var a sessionArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", errInvalidArgs)
	}
	sess, err := s.editors.Get(a.SessionID)
	if err != nil {
		return nil, err
	}
	return fn(sess)
}

type editorOpenArgs struct {
	Path           string  `json:"path"`
	ImageBase64    string  `json:"image_base64"`
	MimeType       string  `json:"mime_type"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
}

func (s *Server) handleEditorOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a editorOpenArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := s.resolveSource(sourceArgs{Path: a.Path, ImageBase64: a.ImageBase64, MimeType: a.MimeType})
	if err != nil {
		return nil, err
	}
	sess, err := s.editors.Open(ctx, src, editor.Viewport{Width: a.ViewportWidth, Height: a.ViewportHeight})
	if err != nil {
		return nil, err
	}
	return sess.State(), nil
}

type editorRotateArgs struct {
	sessionArgs
	Direction string `json:"direction"`
	Degrees   int    `json:"degrees"`
}

func (s *Server) handleEditorRotate(args json.RawMessage) (interface{}, error) {
	var a editorRotateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
		switch a.Direction {
		case "left":
			return sess.RotateLeft()
		case "right":
			return sess.RotateRight()
		case "":
			if a.Degrees == 0 {
				return nil, fmt.Errorf("%w: direction or degrees is required", errInvalidArgs)
			}
			return sess.Rotate(a.Degrees)
		default:
			return nil, fmt.Errorf("%w: direction must be left or right, got %q", errInvalidArgs, a.Direction)
		}
	})
}

type editorAdjustArgs struct {
	sessionArgs
	Brightness *int `json:"brightness"`
	Contrast   *int `json:"contrast"`
	Saturation *int `json:"saturation"`
}

func (s *Server) handleEditorAdjust(args json.RawMessage) (interface{}, error) {
	var a editorAdjustArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
		adj := applyAdjustArgs(sess.State().Adjust, a.Brightness, a.Contrast, a.Saturation)
		return sess.SetAdjustment(adj)
	})
}

type editorCropModeArgs struct {
	sessionArgs
	Enabled bool `json:"enabled"`
}

func (s *Server) handleEditorCropMode(args json.RawMessage) (interface{}, error) {
	var a editorCropModeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
		if a.Enabled {
			return sess.EnableCrop()
		}
		return sess.DisableCrop()
	})
}

type editorPointerArgs struct {
	sessionArgs
	editor.PointerEvent
}

func (s *Server) handleEditorPointer(args json.RawMessage) (interface{}, error) {
	var a editorPointerArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
		return sess.HandlePointer(a.PointerEvent)
	})
}

type editorViewportArgs struct {
	sessionArgs
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleEditorViewport(args json.RawMessage) (interface{}, error) {
	var a editorViewportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.withSession(args, func(sess *editor.Session) (interface{}, error) {
		return sess.SetViewport(editor.Viewport{Width: a.Width, Height: a.Height})
	})
}

func (s *Server) handleEditorClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", errInvalidArgs)
	}
	if err := s.editors.Close(a.SessionID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"session_id": a.SessionID, "closed": true}, nil
}

// === Document handlers ===

// documentSource resolves the image of a document tool call.
func (s *Server) documentSource(args json.RawMessage, a *sourceArgs) (*imaging.ImageSource, error) {
	if s.docs == nil {
		return nil, errNoCapability
	}
	if err := unmarshalArgs(args, a); err != nil {
		return nil, err
	}
	return s.resolveSource(*a)
}

type textTask func(*document.Service, context.Context, *imaging.ImageSource) (*document.TextResult, error)

func (s *Server) handleDocumentText(ctx context.Context, args json.RawMessage, task textTask) (interface{}, error) {
	var a sourceArgs
	src, err := s.documentSource(args, &a)
	if err != nil {
		return nil, err
	}
	return task(s.docs, ctx, src)
}

func (s *Server) handleDocumentExtractTable(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	src, err := s.documentSource(args, &a)
	if err != nil {
		return nil, err
	}
	return s.docs.ExtractTable(ctx, src)
}

type extractFieldsArgs struct {
	Fields []string `json:"fields"`
}

func (s *Server) handleDocumentExtractFields(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	src, err := s.documentSource(args, &a)
	if err != nil {
		return nil, err
	}
	var f extractFieldsArgs
	if err := unmarshalArgs(args, &f); err != nil {
		return nil, err
	}
	return s.docs.ExtractFields(ctx, src, f.Fields)
}

type removeHandwritingArgs struct {
	Save bool `json:"save"`
}

// removeHandwritingResult is the cleaned image plus, when saved, where it
// was written.
type removeHandwritingResult struct {
	*document.ImageResult
	Download *export.Download `json:"download,omitempty"`
}

func (s *Server) handleDocumentRemoveHandwriting(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	src, err := s.documentSource(args, &a)
	if err != nil {
		return nil, err
	}
	var opts removeHandwritingArgs
	if err := unmarshalArgs(args, &opts); err != nil {
		return nil, err
	}

	res, err := s.docs.RemoveHandwriting(ctx, src)
	if err != nil {
		return nil, err
	}
	out := removeHandwritingResult{ImageResult: res}
	if opts.Save {
		dl, err := s.exporter.Export(export.FormatPNG, export.Document{Title: res.Filename, Image: res.Data})
		if err != nil {
			return nil, err
		}
		out.Download = dl
	}
	return out, nil
}

// === Export handlers ===

type exportTextArgs struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (s *Server) handleExportText(args json.RawMessage, format export.Format) (interface{}, error) {
	var a exportTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.exporter.Export(format, export.Document{Title: a.Title, Text: a.Text})
}

type exportCSVArgs struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (s *Server) handleExportCSV(args json.RawMessage) (interface{}, error) {
	var a exportCSVArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Headers) == 0 {
		return nil, fmt.Errorf("%w: headers are required", errInvalidArgs)
	}
	table := &export.Table{Headers: a.Headers, Rows: a.Rows}
	return s.exporter.Export(export.FormatCSV, export.Document{Title: a.Title, Table: table})
}
