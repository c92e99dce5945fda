package timegrid

import (
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
)

// Понедельник
var reference = time.Date(2025, time.October, 13, 14, 30, 0, 0, time.UTC)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		// Число без am/pm — час 24-часовой шкалы
		{input: "9", want: 9 * 60},
		{input: "09", want: 9 * 60},
		{input: "13", want: 13 * 60},
		{input: "0", want: 0},
		{input: "9:00", want: 9 * 60},
		{input: "9.30", want: 9*60 + 30},
		{input: "13:45", want: 13*60 + 45},
		{input: "9am", want: 9 * 60},
		{input: "9 am", want: 9 * 60},
		{input: "1:30 pm", want: 13*60 + 30},
		{input: "12am", want: 0},
		{input: "12pm", want: 12 * 60},
		{input: "12:15 AM", want: 15},
		{input: "24", wantErr: true},
		{input: "9:60", wantErr: true},
		{input: "13pm", wantErr: true},
		{input: "", wantErr: true},
		{input: "noonish", wantErr: true},
		{input: "9:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeTime(%q) = %d, expected error", tt.input, got)
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *ParseError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTime(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeTime(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "2025-10-18", want: "2025-10-18"},
		{input: "10/18", want: "2025-10-18"},
		{input: "today", want: "2025-10-13"},
		{input: "tomorrow", want: "2025-10-14"},
		{input: "tmrw", want: "2025-10-14"},
		// Название дня недели — ближайшее вхождение начиная с сегодня
		{input: "monday", want: "2025-10-13"},
		{input: "friday", want: "2025-10-17"},
		{input: "Fri", want: "2025-10-17"},
		// "next" для сегодняшнего дня недели — через неделю
		{input: "next monday", want: "2025-10-20"},
		{input: "next friday", want: "2025-10-17"},
		{input: "2/30", wantErr: true},
		{input: "13/01", wantErr: true},
		{input: "someday", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeDate(tt.input, reference)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeDate(%q) = %v, expected error", tt.input, got)
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *ParseError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDate(%q): %v", tt.input, err)
			}
			if got.Format(DateLayout) != tt.want {
				t.Fatalf("NormalizeDate(%q) = %s, want %s", tt.input, got.Format(DateLayout), tt.want)
			}
		})
	}
}

func TestExtractDaypart(t *testing.T) {
	tests := []struct {
		input      string
		wantPhrase string
		wantPart   Daypart
	}{
		{input: "tomorrow afternoon", wantPhrase: "tomorrow", wantPart: DaypartAfternoon},
		{input: "Friday morning", wantPhrase: "friday", wantPart: DaypartMorning},
		{input: "evening", wantPhrase: "", wantPart: DaypartEvening},
		{input: "tomorrow", wantPhrase: "tomorrow", wantPart: ""},
	}

	for _, tt := range tests {
		phrase, part := ExtractDaypart(tt.input)
		if phrase != tt.wantPhrase || part != tt.wantPart {
			t.Errorf("ExtractDaypart(%q) = (%q, %q), want (%q, %q)",
				tt.input, phrase, part, tt.wantPhrase, tt.wantPart)
		}
	}
}

func TestDaypartContains(t *testing.T) {
	if !DaypartMorning.Contains(11*60 + 59) {
		t.Error("11:59 must be morning")
	}
	if DaypartMorning.Contains(12 * 60) {
		t.Error("12:00 must not be morning")
	}
	if !DaypartAfternoon.Contains(12 * 60) {
		t.Error("12:00 must be afternoon")
	}
	if DaypartAfternoon.Contains(17 * 60) {
		t.Error("17:00 must not be afternoon")
	}
	if !DaypartEvening.Contains(17 * 60) {
		t.Error("17:00 must be evening")
	}
}

func TestExpandSlots(t *testing.T) {
	// Рабочий день 09:00-17:00, шаг 15 минут, услуга 30 минут:
	// первый слот 09:00, последний 16:30
	open := model.TimeRange{Start: 9 * 60, End: 17 * 60}
	slots := ExpandSlots(open, 15, 30)

	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if slots[0] != 9*60 {
		t.Errorf("first slot = %s, want 09:00", model.MinutesToClock(slots[0]))
	}
	if last := slots[len(slots)-1]; last != 16*60+30 {
		t.Errorf("last slot = %s, want 16:30", model.MinutesToClock(last))
	}

	// Выравнивание по шагу от начала интервала
	for _, s := range slots {
		if (s-open.Start)%15 != 0 {
			t.Errorf("slot %s is not aligned to the grid", model.MinutesToClock(s))
		}
		if s+30 > open.End {
			t.Errorf("slot %s does not fit before closing", model.MinutesToClock(s))
		}
	}
}

func TestExpandSlotsServiceDoesNotFit(t *testing.T) {
	open := model.TimeRange{Start: 9 * 60, End: 9*60 + 20}
	if slots := ExpandSlots(open, 15, 30); len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}
}
