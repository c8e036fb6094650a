package medication

import (
	"reflect"
	"testing"
)

func TestGenerateTimes(t *testing.T) {
	cases := []struct {
		frequency Frequency
		want      []string
	}{
		{FrequencyOnceDaily, []string{"08:00"}},
		{FrequencyTwiceDaily, []string{"08:00", "20:00"}},
		{FrequencyThreeTimesDaily, []string{"08:00", "14:00", "20:00"}},
		{FrequencyFourTimesDaily, []string{"06:00", "12:00", "18:00", "22:00"}},
		{FrequencyEvery6Hours, []string{"06:00", "12:00", "18:00", "00:00"}},
		{FrequencyEvery8Hours, []string{"08:00", "16:00", "00:00"}},
		{FrequencyEvery12Hours, []string{"08:00", "20:00"}},
		{FrequencyWeekly, []string{"08:00"}},
		{FrequencyAsNeeded, []string{"08:00"}},
		{Frequency("five_times_daily"), []string{"08:00"}},
	}

	for _, tc := range cases {
		got := GenerateTimes(tc.frequency)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("GenerateTimes(%s) = %v, want %v", tc.frequency, got, tc.want)
		}
	}
}

func TestGenerateTimesReturnsCopy(t *testing.T) {
	first := GenerateTimes(FrequencyTwiceDaily)
	first[0] = "09:30"

	second := GenerateTimes(FrequencyTwiceDaily)
	if second[0] != "08:00" {
		t.Fatal("GenerateTimes must not expose the shared table")
	}
}
