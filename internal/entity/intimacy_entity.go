package entity

import "time"

// IntimacyStatus is a progression snapshot, replaced wholesale on every
// successful fetch. There is no merge logic on purpose: stale-but-consistent
// beats partially merged.
type IntimacyStatus struct {
	CharacterId       string
	CurrentLevel      int
	XpProgressInLevel int
	XpForNextLevel    int
	StreakDays        int
	FetchedAt         time.Time
}

// DefaultIntimacyStatus is what the UI shows before the first successful
// fetch for a character.
func DefaultIntimacyStatus(characterId string) *IntimacyStatus {
	return &IntimacyStatus{
		CharacterId:    characterId,
		CurrentLevel:   1,
		XpForNextLevel: 100,
	}
}
