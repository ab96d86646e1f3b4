package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"dbadvisor.io/chat-gateway/internal/core"
)

const (
	detailMessageRequired = "Message is required"
	detailNotJSONFile     = "Please upload a JSON file containing database logs."
	detailInvalidJSON     = "Invalid JSON format. Please ensure your file contains valid JSON data."
	detailBodyTooLarge    = "Request body too large"

	// structuredFormField lets a form submission carry the JSON payload
	// as a single field; when present it replaces every other field.
	structuredFormField = "chat_request"
)

// RequestError is a client input failure. It is reported to the caller
// directly and never reaches the completion provider.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

func badRequest(detail string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Detail: detail}
}

func unprocessable(detail string) *RequestError {
	return &RequestError{Status: http.StatusUnprocessableEntity, Detail: detail}
}

var logsPrettyOptions = &pretty.Options{Indent: "  "}

type structuredChatRequest struct {
	Message     *string         `json:"message"`
	ChatHistory json.RawMessage `json:"chat_history"`
	FileData    *string         `json:"file_data"`
}

type historyEntry struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// decodeChatRequest normalizes either wire encoding into a core.ChatRequest.
// JSON bodies go through the structured adapter; everything else is read as
// form fields.
func decodeChatRequest(r *http.Request, maxMemory int64) (core.ChatRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeStructured(r.Body)
	}
	return decodeForm(r, mediaType, maxMemory)
}

func decodeStructured(body io.Reader) (core.ChatRequest, error) {
	var payload structuredChatRequest
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.ChatRequest{}, &RequestError{Status: http.StatusRequestEntityTooLarge, Detail: detailBodyTooLarge}
		}
		return core.ChatRequest{}, unprocessable("Invalid request body: " + err.Error())
	}
	if payload.Message == nil {
		return core.ChatRequest{}, unprocessable(detailMessageRequired)
	}

	history, err := decodeStructuredHistory(payload.ChatHistory)
	if err != nil {
		return core.ChatRequest{}, err
	}

	req := core.ChatRequest{
		Message: *payload.Message,
		History: history,
	}
	if payload.FileData != nil {
		req.FileData = *payload.FileData
	}
	return req, nil
}

// decodeStructuredHistory requires every entry to carry string role and
// content fields. An omitted chat_history is empty; an explicit null is not.
func decodeStructuredHistory(raw json.RawMessage) ([]core.ChatMessage, error) {
	if len(raw) == 0 {
		return []core.ChatMessage{}, nil
	}

	if string(raw) == "null" {
		return nil, unprocessable("chat_history must be a list")
	}

	var entries []historyEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, unprocessable("Invalid chat_history: " + err.Error())
	}

	history := make([]core.ChatMessage, 0, len(entries))
	for i, e := range entries {
		if e.Role == nil || e.Content == nil {
			return nil, unprocessable(fmt.Sprintf("chat_history[%d] requires role and content", i))
		}
		history = append(history, core.ChatMessage{Role: *e.Role, Content: *e.Content})
	}
	return history, nil
}

func decodeForm(r *http.Request, mediaType string, maxMemory int64) (core.ChatRequest, error) {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.ChatRequest{}, &RequestError{Status: http.StatusRequestEntityTooLarge, Detail: detailBodyTooLarge}
		}
		return core.ChatRequest{}, badRequest("Invalid form data: " + err.Error())
	}

	if raw := r.PostFormValue(structuredFormField); raw != "" {
		return decodeStructured(strings.NewReader(raw))
	}

	message := r.PostFormValue("message")
	if message == "" {
		return core.ChatRequest{}, badRequest(detailMessageRequired)
	}

	req := core.ChatRequest{
		Message: message,
		History: parseFormHistory(r.PostFormValue("chat_history")),
	}

	if fh := uploadedFile(r); fh != nil {
		fileData, err := readLogFile(fh)
		if err != nil {
			return core.ChatRequest{}, err
		}
		req.FileData = fileData
	}
	return req, nil
}

// parseFormHistory never fails: anything that is not a JSON array of
// {role, content} string pairs yields an empty history.
func parseFormHistory(raw string) []core.ChatMessage {
	if raw == "" {
		raw = "[]"
	}

	var entries []historyEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []core.ChatMessage{}
	}

	history := make([]core.ChatMessage, 0, len(entries))
	for _, e := range entries {
		if e.Role == nil || e.Content == nil {
			return []core.ChatMessage{}
		}
		history = append(history, core.ChatMessage{Role: *e.Role, Content: *e.Content})
	}
	return history
}

func uploadedFile(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// readLogFile validates an uploaded log file and returns it re-indented
// with two spaces, keeping the original key order.
func readLogFile(fh *multipart.FileHeader) (string, error) {
	if fh.Filename == "" || !strings.HasSuffix(fh.Filename, ".json") {
		return "", badRequest(detailNotJSONFile)
	}

	f, err := fh.Open()
	if err != nil {
		return "", badRequest(detailInvalidJSON)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", badRequest(detailInvalidJSON)
	}
	return prettyJSON(content)
}

func prettyJSON(content []byte) (string, error) {
	if !utf8.Valid(content) || !gjson.ValidBytes(content) {
		return "", badRequest(detailInvalidJSON)
	}
	formatted := pretty.PrettyOptions(content, logsPrettyOptions)
	return strings.TrimRight(string(formatted), "\n"), nil
}
