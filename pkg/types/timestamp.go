package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
)

// Timestamp - nullable дата backend. Принимает RFC3339, "2006-01-02 15:04:05"
// и просто дату "2006-01-02". Значения без пояса - это местное время сервера,
// дата без времени - полночь этого календарного дня.
type Timestamp struct {
	null.Time
}

// RFC3339 несёт свой пояс, остальные раскладки разбираются в time.Local.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: null.TimeFrom(t)}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = null.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("неверный формат даты %s: %w", string(data), err)
	}
	if s == "" {
		t.Time = null.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = null.TimeFrom(parsed)
			return nil
		}
	}
	return fmt.Errorf("неизвестный формат даты %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// Ptr возвращает nil для пустой даты.
func (t Timestamp) Ptr() *time.Time {
	return t.Time.Ptr()
}
