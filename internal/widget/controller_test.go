package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbotics/automate-web/internal/model/chat"
	"github.com/smartbotics/automate-web/internal/model/page"
	chatservice "github.com/smartbotics/automate-web/internal/service/chat"
)

var fixedNow = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

const (
	wide   = 1280
	narrow = 390
)

func mount(t *testing.T, p *fakePage, sender Sender) (*Controller, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	c, err := Mount(p.elements(), p, sender,
		WithScheduler(sched),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return c, sched
}

func lastTurns(turns []chat.Turn, n int) []chat.Turn {
	if len(turns) < n {
		return turns
	}
	return turns[len(turns)-n:]
}

func TestMountRequiresEveryAffordance(t *testing.T) {
	p := newFakePage(wide, 900)
	el := p.elements()
	el.Send = nil

	c, err := Mount(el, p, &fakeSender{})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrMissingAffordance)
}

func TestMountInitialState(t *testing.T) {
	p := newFakePage(wide, 900)
	c, _ := mount(t, p, &fakeSender{})

	assert.Equal(t, Closed, c.State())
	assert.True(t, p.snapshot().sendDisabled)
	assert.Empty(t, c.Transcript())
}

func TestIdentityStableAcrossSends(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "ok"}
	c, _ := mount(t, p, sender)

	ident := c.Identity()
	require.NotEmpty(t, ident.SessionID)
	require.NotEmpty(t, ident.ConversationID)
	assert.NotEqual(t, ident.SessionID, ident.ConversationID)

	for _, msg := range []string{"uno", "dos", "tres"} {
		p.typeText(msg)
		c.Send(context.Background())
	}

	calls := sender.calls()
	require.Len(t, calls, 3)
	for _, req := range calls {
		assert.Equal(t, ident.SessionID, req.SessionID)
		assert.Equal(t, ident.ConversationID, req.ConversationID)
	}
	assert.Equal(t, ident, c.Identity())
}

func TestSendBlankInputIsNoop(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "ok"}
	c, _ := mount(t, p, sender)

	for _, blank := range []string{"", "   ", "\n\t "} {
		p.typeText(blank)
		c.Send(context.Background())
	}

	assert.Empty(t, sender.calls())
	assert.Empty(t, c.Transcript())
	assert.Zero(t, p.snapshot().typingSeen)
}

func TestSendSuccess(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "Hi there"}
	c, _ := mount(t, p, sender)

	p.typeText("  Hello  ")
	c.Send(context.Background())

	turns := c.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, chat.Turn{Text: "Hello", Origin: chat.User}, turns[0])
	assert.Equal(t, chat.Turn{Text: "Hi there", Origin: chat.Bot}, turns[1])
	for _, turn := range turns {
		assert.False(t, turn.IsError)
	}

	view := p.snapshot()
	assert.Equal(t, turns, view.rendered)
	assert.Equal(t, "", view.inputValue)
	assert.Equal(t, 0, view.inputHeight)
	assert.True(t, view.sendDisabled)
	assert.Equal(t, 1, view.typingSeen)
	assert.Zero(t, view.typing)
	assert.Equal(t, 1, view.focusCount)

	req := sender.calls()[0]
	assert.Equal(t, "Hello", req.Message)
	assert.Equal(t, "2024-06-10T10:00:00.000Z", req.Timestamp)
	assert.Equal(t, "fake-agent/1.0", req.UserAgent)
	assert.Equal(t, page.DefaultPage, req.Page)
}

func TestSendHTTPFailureShowsGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newFakePage(wide, 900)
	c, _ := mount(t, p, chatservice.NewService(srv.URL, time.Second))

	p.typeText("Hello")
	c.Send(context.Background())

	turns := c.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, chat.Turn{Text: "Hello", Origin: chat.User}, turns[0])
	assert.Equal(t, chat.Turn{Text: chat.GenericFailureText, Origin: chat.Bot, IsError: true}, turns[1])
	assert.Zero(t, p.snapshot().typing)
	assert.Equal(t, 1, p.snapshot().focusCount)
}

func TestSendConnectivityFailureShowsDistinctMessage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := newFakePage(wide, 900)
	c, _ := mount(t, p, chatservice.NewService(url, time.Second))

	p.typeText("Hello")
	c.Send(context.Background())

	last := lastTurns(c.Transcript(), 1)[0]
	assert.True(t, last.IsError)
	assert.Equal(t, chat.ConnectivityFailureText, last.Text)
	assert.NotEqual(t, chat.GenericFailureText, last.Text)
	assert.Zero(t, p.snapshot().typing)
}

func TestSendUnsuccessfulBodyShowsGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chat.Reply{Success: false, Error: "boom"})
	}))
	defer srv.Close()

	p := newFakePage(wide, 900)
	c, _ := mount(t, p, chatservice.NewService(srv.URL, time.Second))

	p.typeText("Hello")
	c.Send(context.Background())

	last := lastTurns(c.Transcript(), 1)[0]
	assert.Equal(t, chat.Turn{Text: chat.GenericFailureText, Origin: chat.Bot, IsError: true}, last)
}

func TestSendAgainstMockedEndpoint(t *testing.T) {
	var got chat.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chat.Reply{Success: true, Message: "Hi there"})
	}))
	defer srv.Close()

	p := newFakePage(wide, 900)
	p.fragment = "#pricing"
	c, _ := mount(t, p, chatservice.NewService(srv.URL, time.Second))

	p.typeText("Hello")
	c.Send(context.Background())

	assert.Equal(t, []chat.Turn{
		{Text: "Hello", Origin: chat.User},
		{Text: "Hi there", Origin: chat.Bot},
	}, c.Transcript())
	assert.Equal(t, "pricing", got.Page)
	assert.Equal(t, c.Identity().SessionID, got.SessionID)
}

func TestRequestPageFollowsReferenceLine(t *testing.T) {
	p := newFakePage(wide, 900)
	p.sections = []page.Section{
		{ID: "hero", Top: -600, Bottom: 20},
		{ID: "services", Top: 20, Bottom: 700},
	}
	sender := &fakeSender{reply: "ok"}
	c, _ := mount(t, p, sender)

	p.typeText("hola")
	c.Send(context.Background())
	assert.Equal(t, "services", sender.calls()[0].Page)

	p.mu.Lock()
	p.sections = []page.Section{{ID: "footer", Top: 500, Bottom: 900}}
	p.mu.Unlock()

	p.typeText("hola")
	c.Send(context.Background())
	assert.Equal(t, page.DefaultPage, sender.calls()[1].Page)
}

func TestOpenThenCloseRestoresScroll(t *testing.T) {
	p := newFakePage(narrow, 800)
	c, sched := mount(t, p, &fakeSender{})

	c.Open()
	view := p.snapshot()
	assert.Equal(t, Open, c.State())
	assert.True(t, view.scrollLocked)
	assert.True(t, view.windowActive)
	assert.True(t, view.toggleActive)
	assert.Zero(t, view.focusCount, "focus is deferred on narrow viewports")

	c.Close()
	view = p.snapshot()
	assert.Equal(t, Closed, c.State())
	assert.False(t, view.scrollLocked)
	assert.False(t, view.windowActive)
	assert.False(t, view.toggleActive)

	sched.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, p.snapshot().focusCount)
}

func TestOpenWideFocusesImmediately(t *testing.T) {
	p := newFakePage(wide, 900)
	c, sched := mount(t, p, &fakeSender{})

	c.Open()
	view := p.snapshot()
	assert.Equal(t, 1, view.focusCount)
	assert.False(t, view.scrollLocked)
	assert.Zero(t, view.scrolls)

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, p.snapshot().scrolls)
}

func TestToggleTwiceReturnsToClosed(t *testing.T) {
	p := newFakePage(wide, 900)
	c, _ := mount(t, p, &fakeSender{})

	c.Toggle()
	assert.Equal(t, Open, c.State())
	c.Toggle()
	assert.Equal(t, Closed, c.State())
}

func TestCloseKeepsTranscript(t *testing.T) {
	p := newFakePage(wide, 900)
	c, _ := mount(t, p, &fakeSender{reply: "ok"})

	c.Open()
	p.typeText("hola")
	c.Send(context.Background())
	c.Close()

	assert.Len(t, c.Transcript(), 2)
}

func TestAutoOpenAddsWelcomeOnce(t *testing.T) {
	p := newFakePage(wide, 900)
	c, sched := mount(t, p, &fakeSender{})

	sched.Advance(4999 * time.Millisecond)
	assert.Equal(t, Closed, c.State())

	sched.Advance(time.Millisecond)
	assert.Equal(t, Open, c.State())
	assert.Empty(t, c.Transcript())

	sched.Advance(800 * time.Millisecond)
	assert.Equal(t, []chat.Turn{{Text: chat.WelcomeMessage, Origin: chat.Bot}}, c.Transcript())

	sched.Advance(time.Minute)
	assert.Len(t, c.Transcript(), 1)
}

func TestManualOpenSuppressesAutoOpen(t *testing.T) {
	p := newFakePage(wide, 900)
	c, sched := mount(t, p, &fakeSender{})

	sched.Advance(2 * time.Second)
	c.Toggle()
	c.Toggle()

	sched.Advance(10 * time.Second)
	assert.Equal(t, Closed, c.State())
	assert.Empty(t, c.Transcript())
}

func TestEnterSendsShiftEnterDoesNot(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "ok"}
	c, _ := mount(t, p, sender)

	p.typeText("line one")
	assert.False(t, c.HandleKeyDown("Enter", true))
	assert.False(t, c.HandleKeyDown("a", false))
	assert.Empty(t, sender.calls())

	assert.True(t, c.HandleKeyDown("Enter", false))
	c.Wait()

	require.Len(t, sender.calls(), 1)
	assert.Equal(t, "line one", sender.calls()[0].Message)
}

func TestSubmitDispatchesSend(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "ok"}
	c, _ := mount(t, p, sender)

	p.typeText("hola")
	c.HandleSubmit()
	c.Wait()

	assert.Len(t, c.Transcript(), 2)
}

func TestHandleInputGrowsAndEnablesSend(t *testing.T) {
	p := newFakePage(wide, 900)
	c, _ := mount(t, p, &fakeSender{})

	p.typeText("hola")
	c.HandleInput()
	view := p.snapshot()
	assert.Equal(t, 40, view.inputHeight)
	assert.False(t, view.sendDisabled)

	p.mu.Lock()
	p.scrollHeight = 260
	p.mu.Unlock()
	p.typeText("   ")
	c.HandleInput()
	view = p.snapshot()
	assert.Equal(t, 100, view.inputHeight)
	assert.True(t, view.sendDisabled)
}

func TestPopStateClosesOnNarrow(t *testing.T) {
	p := newFakePage(narrow, 800)
	c, _ := mount(t, p, &fakeSender{})

	assert.False(t, c.HandlePopState(), "closed widget lets navigation through")

	c.Open()
	assert.True(t, c.HandlePopState())
	assert.Equal(t, Closed, c.State())
	assert.False(t, p.snapshot().scrollLocked)
}

func TestPopStateIgnoredOnWide(t *testing.T) {
	p := newFakePage(wide, 900)
	c, _ := mount(t, p, &fakeSender{})

	c.Open()
	assert.False(t, c.HandlePopState())
	assert.Equal(t, Open, c.State())
}

func TestResizePinsHeightWhileKeyboardShown(t *testing.T) {
	p := newFakePage(narrow, 800)
	c, _ := mount(t, p, &fakeSender{})

	p.mu.Lock()
	p.height = 500
	p.mu.Unlock()
	c.HandleResize()
	assert.Equal(t, 500, p.snapshot().windowHeight)

	p.mu.Lock()
	p.height = 700
	p.mu.Unlock()
	c.HandleResize()
	assert.Equal(t, 0, p.snapshot().windowHeight)
}

func TestResizeIgnoredOnWide(t *testing.T) {
	p := newFakePage(wide, 900)
	c, _ := mount(t, p, &fakeSender{})

	p.mu.Lock()
	p.height = 300
	p.mu.Unlock()
	c.HandleResize()
	assert.Equal(t, 0, p.snapshot().windowHeight)
}

func TestScrollDeferredAfterAppend(t *testing.T) {
	p := newFakePage(wide, 900)
	c, sched := mount(t, p, &fakeSender{reply: "ok"})

	p.typeText("hola")
	c.Send(context.Background())
	assert.Zero(t, p.snapshot().scrolls)

	sched.Advance(99 * time.Millisecond)
	assert.Zero(t, p.snapshot().scrolls)

	sched.Advance(time.Millisecond)
	// user turn, typing indicator, bot turn
	assert.Equal(t, 3, p.snapshot().scrolls)
}

func TestOverlappingSendsAreNotCoalesced(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "ok", gate: make(chan struct{})}
	c, _ := mount(t, p, sender)

	p.typeText("primero")
	c.HandleKeyDown("Enter", false)
	p.typeText("segundo")
	c.HandleKeyDown("Enter", false)

	require.Eventually(t, func() bool { return len(sender.calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, p.snapshot().typing)

	close(sender.gate)
	c.Wait()

	view := p.snapshot()
	assert.Zero(t, view.typing)
	assert.Len(t, view.rendered, 4)
}

func TestTeardownDropsLateResponse(t *testing.T) {
	p := newFakePage(wide, 900)
	sender := &fakeSender{reply: "tarde", gate: make(chan struct{})}
	c, sched := mount(t, p, sender)

	p.typeText("hola")
	c.HandleSubmit()
	require.Eventually(t, func() bool { return len(sender.calls()) == 1 }, time.Second, 5*time.Millisecond)

	c.Teardown()
	close(sender.gate)
	c.Wait()
	sched.Advance(time.Minute)

	view := p.snapshot()
	assert.Len(t, view.rendered, 1)
	assert.Equal(t, 1, view.typing, "detached widget leaves the page untouched")
	assert.Zero(t, view.scrolls)
	assert.Equal(t, Closed, c.State())
}
