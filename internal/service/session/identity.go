package session

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartbotics/automate-web/internal/model/chat"
)

const (
	SessionPrefix      = "session_"
	ConversationPrefix = "automate_conv_"

	suffixLen = 5
)

// NewID returns prefix + base36(unix millis) + "_" + a short random base36
// suffix. Collisions are unlikely within one page load but not impossible.
func NewID(prefix string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 36) + "_" + randomSuffix()
}

// NewIdentity generates the session and conversation identifiers for a page load.
func NewIdentity(now time.Time) chat.Identity {
	return chat.Identity{
		SessionID:      NewID(SessionPrefix, now),
		ConversationID: NewID(ConversationPrefix, now),
	}
}

func randomSuffix() string {
	u := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(u[8:]), 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return s[len(s)-suffixLen:]
}
