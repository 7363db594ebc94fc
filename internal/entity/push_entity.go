package entity

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// PushNotice is one notification payload, delivered either by the warm-start
// listener or the cold-start poll. Both paths share DedupKey.
type PushNotice struct {
	Id            string
	CharacterId   string
	CharacterName string
	Message       string
	Timestamp     time.Time
}

// DedupKey identifies a notice across delivery paths. The notification's own
// id wins when present; otherwise the key is derived from characterId and
// timestamp so the cold poll and the warm listener still collapse.
func (p *PushNotice) DedupKey() string {
	if p.Id != "" {
		return p.Id
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", p.CharacterId, p.Timestamp.UnixNano())))
	return fmt.Sprintf("%x", sum[:8])
}
