package fastmail

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jmaptools/fastmail-cli/internal/jmap"
)

const testAccountID = "acc1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requestLog records the method names of every batch the stub server
// receives, so tests can assert which mutations were (or were not) sent.
type requestLog struct {
	mu      sync.Mutex
	batches [][]string
}

func (l *requestLog) record(names []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, names)
}

// Methods flattens the log into one method-name list.
func (l *requestLog) Methods() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, batch := range l.batches {
		out = append(out, batch...)
	}
	return out
}

// newTestClient returns an authenticated client whose API endpoint is an
// in-process stub. respond is invoked with each decoded request and its
// return value is serialized as the JMAP response envelope.
func newTestClient(t *testing.T, respond func(jmap.Request) jmap.Response) (*Client, *requestLog) {
	t.Helper()
	log := &requestLog{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jmap.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("stub could not decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		names := make([]string, len(req.MethodCalls))
		for i, call := range req.MethodCalls {
			names[i] = call.Name
		}
		log.record(names)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(respond(req)); err != nil {
			t.Errorf("stub could not encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	c := New("test-token", discardLogger())
	c.session = &jmap.Session{
		Username:        "me@x.com",
		APIUrl:          srv.URL + "/api",
		DownloadUrl:     srv.URL + "/download/{accountId}/{blobId}/{name}?type={type}",
		PrimaryAccounts: map[string]string{jmap.CapMail: testAccountID},
	}
	c.accountID = testAccountID
	return c, log
}

// respondWith answers every call with its own method name and call id, and
// the args registered for that method. Unregistered methods get the error
// sentinel.
func respondWith(byMethod map[string]map[string]any) func(jmap.Request) jmap.Response {
	return func(req jmap.Request) jmap.Response {
		var resp jmap.Response
		for _, call := range req.MethodCalls {
			args, ok := byMethod[call.Name]
			if !ok {
				resp.MethodResponses = append(resp.MethodResponses, jmap.Invocation{
					Name:   jmap.ErrorMethodName,
					Args:   map[string]any{"type": "unknownMethod", "description": "no stub for " + call.Name},
					CallID: call.CallID,
				})
				continue
			}
			resp.MethodResponses = append(resp.MethodResponses, jmap.Invocation{
				Name:   call.Name,
				Args:   args,
				CallID: call.CallID,
			})
		}
		return resp
	}
}

// mailboxListArgs is a Mailbox/get response body with the standard folders
// used across tests.
func mailboxListArgs() map[string]any {
	role := func(s string) any { return s }
	return map[string]any{
		"accountId": testAccountID,
		"state":     "s1",
		"list": []map[string]any{
			{"id": "mb-inbox", "name": "Inbox", "role": role("inbox"), "totalEmails": 10, "unreadEmails": 2},
			{"id": "mb-drafts", "name": "Drafts", "role": role("drafts")},
			{"id": "mb-sent", "name": "Sent", "role": role("sent")},
			{"id": "mb-junk", "name": "Spam", "role": role("junk")},
			{"id": "mb-work", "name": "Work"},
		},
	}
}

func identityListArgs() map[string]any {
	return map[string]any{
		"accountId": testAccountID,
		"list": []map[string]any{
			{"id": "id1", "name": "Me", "email": "me@x.com"},
		},
	}
}
