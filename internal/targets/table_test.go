package targets

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestEveryTierNonEmptyAndStable(t *testing.T) {
	for _, tier := range AllTiers {
		first, err := GetTier(string(tier))
		if err != nil {
			t.Fatalf("GetTier(%s): %v", tier, err)
		}
		if len(first) == 0 {
			t.Fatalf("tier %s empty", tier)
		}
		for i, h := range first {
			if h == "" {
				t.Fatalf("tier %s has empty identifier at %d", tier, i)
			}
		}
		second, _ := GetTier(string(tier))
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("tier %s not stable: %v vs %v", tier, first, second)
		}
	}
}

func TestTierSizes(t *testing.T) {
	want := map[Tier]int{TierEarly: 6, TierMid: 7, TierLate: 18, TierEndgame: 9}
	for tier, n := range want {
		hosts, err := Targets(tier)
		if err != nil {
			t.Fatalf("Targets(%s): %v", tier, err)
		}
		if len(hosts) != n {
			t.Fatalf("tier %s: got %d entries want %d", tier, len(hosts), n)
		}
	}
}

func TestEarlyTierExact(t *testing.T) {
	got, err := GetTier("EARLY")
	if err != nil {
		t.Fatalf("GetTier: %v", err)
	}
	want := []string{"n00dles", "foodnstuff", "sigma-cosmetics", "joesguns", "hong-fang-tea", "harakiri-sushi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EARLY = %v, want %v", got, want)
	}
}

func TestLateTierContents(t *testing.T) {
	late, _ := GetTier("LATE")
	if len(late) != 18 {
		t.Fatalf("LATE has %d entries", len(late))
	}
	for _, host := range []string{"CSEC", "run4theh111z"} {
		found := false
		for _, h := range late {
			if h == host {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("LATE missing %s", host)
		}
	}
}

func TestDuplicatesAcrossTiers(t *testing.T) {
	for _, tier := range []Tier{TierEarly, TierMid, TierLate} {
		hosts, _ := Targets(tier)
		if !strings.Contains(strings.Join(hosts, ","), "joesguns") {
			t.Fatalf("expected joesguns in %s", tier)
		}
	}
}

func TestUnknownTier(t *testing.T) {
	for _, name := range []string{"NONEXISTENT", "early", "", " LATE"} {
		_, err := GetTier(name)
		var ute *UnknownTierError
		if !errors.As(err, &ute) {
			t.Fatalf("GetTier(%q): expected UnknownTierError, got %v", name, err)
		}
		if ute.Name != name {
			t.Fatalf("error carries %q want %q", ute.Name, name)
		}
	}
}

func TestThreadDistributionSumsToOne(t *testing.T) {
	var sum float64
	for _, k := range KeysFor(GroupThreadDistribution) {
		v, err := GetSetting(string(GroupThreadDistribution), string(k))
		if err != nil {
			t.Fatalf("GetSetting(%s): %v", k, err)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("thread distribution sums to %v", sum)
	}
}

func TestTimingMultipliersOrdered(t *testing.T) {
	tm := Recommended().Timing
	if !(tm.Conservative <= tm.Balanced && tm.Balanced <= tm.Aggressive) {
		t.Fatalf("timing multipliers not ascending: %+v", tm)
	}
	if tm.Conservative < 1 {
		t.Fatalf("conservative multiplier below 1: %v", tm.Conservative)
	}
}

func TestRAMThresholdsOrdered(t *testing.T) {
	r := Recommended().RAM
	if !(r.MinForBatch <= r.RecommendedForBatch && r.RecommendedForBatch <= r.IdealForBatch) {
		t.Fatalf("ram thresholds not ascending: %+v", r)
	}
}

func TestGetSettingValues(t *testing.T) {
	cases := []struct {
		group, key string
		want       float64
	}{
		{"THREAD_DISTRIBUTION", "HACK_PERCENT", 0.25},
		{"THREAD_DISTRIBUTION", "GROW_PERCENT", 0.45},
		{"THREAD_DISTRIBUTION", "WEAKEN_PERCENT", 0.30},
		{"TIMING_MULTIPLIERS", "CONSERVATIVE", 1.0},
		{"TIMING_MULTIPLIERS", "BALANCED", 1.25},
		{"TIMING_MULTIPLIERS", "AGGRESSIVE", 1.5},
		{"RAM_THRESHOLDS", "MIN_FOR_BATCH", 1.0},
		{"RAM_THRESHOLDS", "RECOMMENDED_FOR_BATCH", 4.0},
		{"RAM_THRESHOLDS", "IDEAL_FOR_BATCH", 8.0},
	}
	for _, c := range cases {
		got, err := GetSetting(c.group, c.key)
		if err != nil {
			t.Fatalf("GetSetting(%s, %s): %v", c.group, c.key, err)
		}
		if got != c.want {
			t.Fatalf("GetSetting(%s, %s) = %v want %v", c.group, c.key, got, c.want)
		}
	}
}

func TestUnknownSetting(t *testing.T) {
	cases := []struct{ group, key string }{
		{"NOPE", "HACK_PERCENT"},
		{"THREAD_DISTRIBUTION", "NOPE"},
		// valid key, wrong group
		{"RAM_THRESHOLDS", "HACK_PERCENT"},
		{"thread_distribution", "HACK_PERCENT"},
	}
	for _, c := range cases {
		_, err := GetSetting(c.group, c.key)
		var use *UnknownSettingError
		if !errors.As(err, &use) {
			t.Fatalf("GetSetting(%q, %q): expected UnknownSettingError, got %v", c.group, c.key, err)
		}
	}
}

func TestUnknownSettingMessage(t *testing.T) {
	_, err := GetSetting("NOPE", "X")
	if !strings.Contains(err.Error(), "group") || strings.Contains(err.Error(), `"X"`) {
		t.Fatalf("unexpected message for bad group: %v", err)
	}
	// lower-case group is rejected as a group, not as a key
	_, err = GetSetting("thread_distribution", "HACK_PERCENT")
	if !strings.Contains(err.Error(), `unknown setting group "thread_distribution"`) || strings.Contains(err.Error(), `"HACK_PERCENT"`) {
		t.Fatalf("unexpected message for lower-case group: %v", err)
	}
	_, err = GetSetting("RAM_THRESHOLDS", "X")
	if !strings.Contains(err.Error(), `"X"`) {
		t.Fatalf("unexpected message for bad key: %v", err)
	}
}

func TestReadsDoNotAlias(t *testing.T) {
	hosts, _ := GetTier("EARLY")
	hosts[0] = "mutated"
	again, _ := GetTier("EARLY")
	if again[0] != "n00dles" {
		t.Fatalf("mutation leaked into table: %v", again)
	}
	snap := Table()
	snap.Targets[TierMid][0] = "mutated"
	snap.Settings[GroupRAMThresholds][KeyIdealForBatch] = 0
	if v, _ := GetSetting("RAM_THRESHOLDS", "IDEAL_FOR_BATCH"); v != 8 {
		t.Fatalf("snapshot write leaked: %v", v)
	}
	if mid, _ := GetTier("MID"); mid[0] != "joesguns" {
		t.Fatalf("snapshot write leaked into MID: %v", mid)
	}
}

func TestRepeatedReadsIdentical(t *testing.T) {
	want, _ := GetTier("EARLY")
	ref := strings.Join(want, "\x00")
	for i := 0; i < 1000; i++ {
		got, _ := GetTier("EARLY")
		if strings.Join(got, "\x00") != ref {
			t.Fatalf("read %d differs: %v", i, got)
		}
	}
}

func TestConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, tier := range AllTiers {
				if _, err := Targets(tier); err != nil {
					errs <- err
				}
			}
			if _, err := GetSetting("TIMING_MULTIPLIERS", "BALANCED"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent read failed: %v", err)
	}
}

func TestTableShape(t *testing.T) {
	snap := Table()
	if len(snap.Targets) != 4 {
		t.Fatalf("expected 4 tiers, got %d", len(snap.Targets))
	}
	if len(snap.Settings) != 3 {
		t.Fatalf("expected 3 setting groups, got %d", len(snap.Settings))
	}
	for _, g := range AllSettingGroups {
		if len(snap.Settings[g]) != 3 {
			t.Fatalf("group %s has %d keys", g, len(snap.Settings[g]))
		}
	}
}

func TestCheckBuiltinTable(t *testing.T) {
	if err := Check(); err != nil {
		t.Fatalf("built-in table failed check: %v", err)
	}
}

func TestCheckReportsEveryViolation(t *testing.T) {
	bad := Settings{
		Threads: ThreadDistribution{Hack: 0.5, Grow: 0.5, Weaken: 0.5},
		Timing:  TimingMultipliers{Conservative: 0.9, Balanced: 1.5, Aggressive: 1.2},
		RAM:     RAMThresholds{MinForBatch: 8, RecommendedForBatch: 4, IdealForBatch: 1},
	}
	err := check(map[Tier][]string{TierEarly: {""}}, bad)
	if err == nil {
		t.Fatal("expected violations")
	}
	msg := err.Error()
	for _, want := range []string{"empty identifier", "tier MID is empty", "sums to", ">= 1", "out of order", "ram thresholds"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing %q in %s", want, msg)
		}
	}
}
