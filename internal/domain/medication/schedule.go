package medication

// frequencyTimes is the fixed frequency-to-clock-times table. These are
// canonical dosing windows, not calendar-aware titration; downstream
// consumers depend on the exact values.
var frequencyTimes = map[Frequency][]string{
	FrequencyOnceDaily:       {"08:00"},
	FrequencyTwiceDaily:      {"08:00", "20:00"},
	FrequencyThreeTimesDaily: {"08:00", "14:00", "20:00"},
	FrequencyFourTimesDaily:  {"06:00", "12:00", "18:00", "22:00"},
	FrequencyEvery6Hours:     {"06:00", "12:00", "18:00", "00:00"},
	FrequencyEvery8Hours:     {"08:00", "16:00", "00:00"},
	FrequencyEvery12Hours:    {"08:00", "20:00"},
}

// GenerateTimes maps a frequency code to its ordered daily clock times.
// Unrecognized, weekly and as-needed codes default to a single 08:00 slot.
func GenerateTimes(f Frequency) []string {
	times, ok := frequencyTimes[f]
	if !ok {
		return []string{"08:00"}
	}
	out := make([]string, len(times))
	copy(out, times)
	return out
}
