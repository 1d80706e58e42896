package notify

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeOps struct{ ids []int64 }

func (f fakeOps) Operators() []int64 { return f.ids }

// fakeAPI records recipients and fails sends to one of them.
type fakeAPI struct {
	tele.API

	mu      sync.Mutex
	failFor int64
	sent    []int64
}

func (a *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, err := strconv.ParseInt(to.Recipient(), 10, 64)
	if err != nil {
		return nil, err
	}
	if id == a.failFor {
		return nil, errors.New("forbidden: bot was blocked by the user")
	}
	a.sent = append(a.sent, id)
	return &tele.Message{}, nil
}

type fakeContext struct {
	tele.Context
	api tele.API
}

func (c *fakeContext) Bot() tele.API { return c.api }

func TestFanOutSkipsActorAndSubject(t *testing.T) {
	api := &fakeAPI{}
	c := &fakeContext{api: api}
	n := New(nil, fakeOps{ids: []int64{100, 7, 55}})

	n.OperatorGranted(c, 100, 7, "Alice Smith")

	if len(api.sent) != 1 || api.sent[0] != 55 {
		t.Fatalf("sent = %v, want [55]", api.sent)
	}
}

func TestFanOutContinuesPastFailedRecipient(t *testing.T) {
	api := &fakeAPI{failFor: 7}
	c := &fakeContext{api: api}
	n := New(nil, fakeOps{ids: []int64{100, 7, 55, 61}})

	n.SlotsCleared(c, 100, 3, 5)

	if len(api.sent) != 2 || api.sent[0] != 55 || api.sent[1] != 61 {
		t.Fatalf("sent = %v, want [55 61]", api.sent)
	}
}

func TestDirectSendsToSingleUser(t *testing.T) {
	api := &fakeAPI{}
	c := &fakeContext{api: api}
	n := New(nil, fakeOps{ids: []int64{100}})

	n.Direct(c, 7, "hello")

	if len(api.sent) != 1 || api.sent[0] != 7 {
		t.Fatalf("sent = %v, want [7]", api.sent)
	}
}
