// Package chatlog persists every user↔assistant exchange in two
// on-disk forms: a flat CSV log for spreadsheet-style analysis and a
// structured JSON log for history lookups and analytics.
package chatlog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sportzvillage/svassist/internal/logging"
)

// ErrInconsistent means the flat and structured logs diverged: the CSV
// row was written but the JSON write failed. The interaction is still
// considered delivered; the error flags the divergence for operator
// follow-up.
var ErrInconsistent = errors.New("chat log dual-write inconsistent")

// timestampLayout is RFC 3339 with a fixed-width nine-digit fraction.
// RFC3339Nano trims trailing zeros, which breaks the lexicographic
// ordering History and All rely on; the fixed width keeps string order
// equal to time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// csvHeader is the fixed column schema of chat_logs.csv.
var csvHeader = []string{
	"timestamp", "session_id", "user_id", "username", "role",
	"school_id", "message", "response", "tools_used", "response_time",
	"llm_prompt", "prompt_tokens", "completion_tokens", "total_tokens",
	"model_used", "temperature",
}

// Logger appends interactions to chat_logs.csv and chat_sessions.json
// under one directory. All writes are serialized behind the logger's
// mutex: the structured log is a single JSON document, and interleaved
// writers would tear it.
type Logger struct {
	mu       sync.Mutex
	csvPath  string
	jsonPath string
	log      *logging.Logger
}

// New creates the log directory and the CSV file (with header) if they
// do not exist yet.
func New(dir string, log *logging.Logger) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	l := &Logger{
		csvPath:  filepath.Join(dir, "chat_logs.csv"),
		jsonPath: filepath.Join(dir, "chat_sessions.json"),
		log:      log,
	}

	if _, err := os.Stat(l.csvPath); os.IsNotExist(err) {
		if err := l.initCSV(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking csv log: %w", err)
	}

	return l, nil
}

func (l *Logger) initCSV() error {
	f, err := os.Create(l.csvPath)
	if err != nil {
		return fmt.Errorf("creating csv log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Log appends the entry to both logs and returns the session id. On a
// structured-write failure after a successful flat write it returns the
// session id together with a wrapped ErrInconsistent; the exchange
// already reached the user, so callers keep the chat going and surface
// nothing.
func (l *Logger) Log(entry Entry) (string, error) {
	interaction := l.build(entry)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.appendCSV(interaction); err != nil {
		return "", err
	}
	if err := l.appendJSON(interaction); err != nil {
		l.log.Error("structured chat log write failed after flat write succeeded",
			"session_id", interaction.SessionID, "err", err)
		return interaction.SessionID, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	l.log.Info("chat interaction logged",
		"user_id", entry.User.UserID, "chars", len(entry.Message))
	return interaction.SessionID, nil
}

// build derives the immutable interaction record from a caller entry.
func (l *Logger) build(entry Entry) Interaction {
	sessionID := entry.SessionID
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}
	tools := entry.ToolsUsed
	if tools == nil {
		tools = []string{}
	}
	message := entry.Message

	return Interaction{
		Timestamp: time.Now().Format(timestampLayout),
		SessionID: sessionID,
		User:      entry.User,
		Exchange: Exchange{
			Message:             message,
			MessageLength:       len(message),
			Response:            entry.Response,
			ResponseLength:      len(entry.Response),
			ToolsUsed:           tools,
			ResponseTimeSeconds: entry.ResponseTime,
		},
		LLMAnalytics: entry.LLM,
		Metadata: Metadata{
			MessageType:          Classify(message),
			ContainsSchoolData:   strings.Contains(strings.ToLower(message), "school"),
			ContainsResidentData: strings.Contains(strings.ToLower(message), "resident"),
			IsQuestion:           strings.HasSuffix(strings.TrimSpace(message), "?"),
		},
	}
}

func (l *Logger) appendCSV(in Interaction) error {
	f, err := os.OpenFile(l.csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening csv log: %w", err)
	}
	defer f.Close()

	tools, err := json.Marshal(in.Exchange.ToolsUsed)
	if err != nil {
		return fmt.Errorf("marshalling tools: %w", err)
	}

	w := csv.NewWriter(f)
	record := []string{
		in.Timestamp,
		in.SessionID,
		in.User.UserID,
		in.User.Name,
		in.User.Role,
		in.User.SchoolID,
		in.Exchange.Message,
		in.Exchange.Response,
		string(tools),
		strconv.FormatFloat(in.Exchange.ResponseTimeSeconds, 'f', -1, 64),
		in.LLMAnalytics.Prompt,
		strconv.Itoa(in.LLMAnalytics.PromptTokens),
		strconv.Itoa(in.LLMAnalytics.CompletionTokens),
		strconv.Itoa(in.LLMAnalytics.TotalTokens),
		in.LLMAnalytics.Model,
		strconv.FormatFloat(in.LLMAnalytics.Temperature, 'f', -1, 64),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv row: %w", err)
	}
	return nil
}

// sessionsFile is the shape of chat_sessions.json.
type sessionsFile struct {
	Interactions []Interaction `json:"interactions"`
}

// appendJSON rewrites the structured log with the new interaction
// appended. The write goes through a temp file + rename so a crash
// mid-write never leaves a torn document behind.
func (l *Logger) appendJSON(in Interaction) error {
	data, err := l.readSessionsLocked()
	if err != nil {
		return err
	}
	data.Interactions = append(data.Interactions, in)

	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling structured log: %w", err)
	}

	tmp := l.jsonPath + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("writing structured log: %w", err)
	}
	if err := os.Rename(tmp, l.jsonPath); err != nil {
		return fmt.Errorf("replacing structured log: %w", err)
	}
	return nil
}

func (l *Logger) readSessionsLocked() (*sessionsFile, error) {
	data := &sessionsFile{Interactions: []Interaction{}}

	buf, err := os.ReadFile(l.jsonPath)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading structured log: %w", err)
	}
	if err := json.Unmarshal(buf, data); err != nil {
		return nil, fmt.Errorf("parsing structured log: %w", err)
	}
	return data, nil
}

// History returns the user's interactions, newest first, truncated to
// limit (limit <= 0 means no truncation).
func (l *Logger) History(userID string, limit int) ([]Interaction, error) {
	l.mu.Lock()
	data, err := l.readSessionsLocked()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []Interaction
	for _, in := range data.Interactions {
		if in.User.UserID == userID {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns every interaction, optionally bounded by RFC 3339
// timestamps (inclusive start, inclusive end; empty means unbounded).
func (l *Logger) All(start, end string) ([]Interaction, error) {
	l.mu.Lock()
	data, err := l.readSessionsLocked()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if start == "" && end == "" {
		return data.Interactions, nil
	}
	var out []Interaction
	for _, in := range data.Interactions {
		if start != "" && in.Timestamp < start {
			continue
		}
		if end != "" && in.Timestamp > end {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}
