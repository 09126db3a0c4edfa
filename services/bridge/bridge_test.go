package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlloop-go/protocol"
	"ctrlloop-go/services/control"
	"ctrlloop-go/services/inject"
	"ctrlloop-go/x/shmring"
)

type published struct {
	topic    string
	retained bool
	payload  string
}

type fakeClient struct {
	mu   sync.Mutex
	pubs []published
	subs map[string]Handler
	done chan error
	pubC chan published
}

func newFakeClient() *fakeClient {
	return &fakeClient{subs: map[string]Handler{}, done: make(chan error, 1), pubC: make(chan published, 64)}
}

func (f *fakeClient) Publish(topic string, retained bool, payload []byte) error {
	p := published{topic, retained, string(payload)}
	f.mu.Lock()
	f.pubs = append(f.pubs, p)
	f.mu.Unlock()
	f.pubC <- p
	return nil
}

func (f *fakeClient) Subscribe(topic string, h Handler) error {
	f.mu.Lock()
	f.subs[topic] = h
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) handler(t *testing.T, topic string) Handler {
	t.Helper()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.subs[topic] != nil
	}, time.Second, 5*time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[topic]
}

func (f *fakeClient) deliver(t *testing.T, topic, payload string) {
	t.Helper()
	f.handler(t, topic)(topic, []byte(payload))
}

func (f *fakeClient) Done() <-chan error { return f.done }
func (f *fakeClient) Close() error       { return nil }

func next(t *testing.T, f *fakeClient, topic string) published {
	t.Helper()
	timer := time.NewTimer(time.Second)
	defer timer.Stop()
	for {
		select {
		case p := <-f.pubC:
			if p.topic == topic {
				return p
			}
		case <-timer.C:
			t.Fatalf("timeout waiting for %s", topic)
			return published{}
		}
	}
}

type ringTX struct{ r *shmring.Ring }

func (x ringTX) TakeTX(dst []byte) int     { return x.r.TryReadInto(dst) }
func (x ringTX) TXReady() <-chan struct{} { return x.r.Readable() }

func setup(t *testing.T) (*Service, *control.Consumer, *shmring.Ring) {
	t.Helper()
	p, c := control.NewCommandQueue()
	tx := shmring.New(256)
	s := New("dev/", inject.New(p, nil), ringTX{tx}, nil)
	return s, c, tx
}

func TestCommandsReachTheQueue(t *testing.T) {
	s, cons, _ := setup(t)
	fc := newFakeClient()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, func(context.Context) (Client, error) { return fc, nil })

	st := next(t, fc, "dev/"+TopicState)
	assert.True(t, st.retained)
	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(st.payload), &state))
	assert.Equal(t, "up", state["level"])

	fc.deliver(t, "dev/cmd", "gpio 13 on")
	cmd, ok := cons.Dequeue()
	require.True(t, ok)
	assert.Equal(t, protocol.KindSetGpio, cmd.Kind())
	assert.Equal(t, uint8(13), cmd.Pin())

	fc.deliver(t, "dev/cmd", "explode")
	e := next(t, fc, "dev/"+TopicCmdError)
	assert.True(t, strings.HasSuffix(e.payload, ": explode"), e.payload)
}

// stallingClient holds error replies until released, as a broker that is
// slow to acknowledge would.
type stallingClient struct {
	*fakeClient
	release chan struct{}
}

func (c *stallingClient) Publish(topic string, retained bool, payload []byte) error {
	if strings.HasSuffix(topic, TopicCmdError) {
		<-c.release
	}
	return c.fakeClient.Publish(topic, retained, payload)
}

func TestSlowErrorReplyDoesNotBlockDelivery(t *testing.T) {
	s, cons, _ := setup(t)
	sc := &stallingClient{fakeClient: newFakeClient(), release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, func(context.Context) (Client, error) { return sc, nil })
	next(t, sc.fakeClient, "dev/"+TopicState)

	h := sc.handler(t, "dev/cmd")
	delivered := make(chan struct{})
	go func() {
		h("dev/cmd", []byte("explode"))
		h("dev/cmd", []byte("gpio 2 off"))
		close(delivered)
	}()
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("command delivery blocked behind the error reply")
	}
	cmd, ok := cons.Dequeue()
	require.True(t, ok)
	assert.Equal(t, uint8(2), cmd.Pin())

	close(sc.release)
	e := next(t, sc.fakeClient, "dev/"+TopicCmdError)
	assert.Equal(t, "invalid_command: explode", e.payload)
}

func TestUARTBytesArePublished(t *testing.T) {
	s, _, tx := setup(t)
	fc := newFakeClient()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, func(context.Context) (Client, error) { return fc, nil })
	next(t, fc, "dev/"+TopicState)

	tx.TryWriteFrom([]byte("hello"))
	p := next(t, fc, "dev/"+TopicUARTTX)
	assert.Equal(t, "hello", p.payload)
	assert.False(t, p.retained)
}

func TestRedialsAfterLinkLoss(t *testing.T) {
	s, _, _ := setup(t)
	first, second := newFakeClient(), newFakeClient()
	var mu sync.Mutex
	calls := 0
	dial := func(context.Context) (Client, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		switch calls {
		case 1:
			return nil, errors.New("refused")
		case 2:
			return first, nil
		default:
			return second, nil
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, dial)

	next(t, first, "dev/"+TopicState)
	first.done <- errors.New("gone")
	next(t, second, "dev/"+TopicState)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _, _ := setup(t)
	fc := newFakeClient()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx, func(context.Context) (Client, error) { return fc, nil })
		close(stopped)
	}()
	next(t, fc, "dev/"+TopicState)
	cancel()

	st := next(t, fc, "dev/"+TopicState)
	assert.Contains(t, st.payload, `"status":"stopped"`)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestBackoffSeq(t *testing.T) {
	b := backoffSeq(100*time.Millisecond, 350*time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, b())
	assert.Equal(t, 200*time.Millisecond, b())
	assert.Equal(t, 350*time.Millisecond, b())
	assert.Equal(t, 350*time.Millisecond, b())
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://u:p@localhost:1883/lab/board1?client-id=sim")
	require.NoError(t, err)
	assert.Equal(t, "lab/board1/", prefix)
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://localhost:1883", opts.Servers[0].String())
	assert.Equal(t, "sim", opts.ClientID)
	assert.Equal(t, "u", opts.Username)
}
