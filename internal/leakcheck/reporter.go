package leakcheck

import (
	"fmt"
	"strings"

	"leakctl/internal/app"
	"leakctl/pkg/logging"
)

// LeakModuleName is the name of the module synthesized by the coarse
// strategies.
const LeakModuleName = "[OWNER LEAK DETECTED]"

// fallbackLabel is used when an owner cannot be described.
const fallbackLabel = "Owner"

// Describe returns a human readable label for owner.
func Describe(owner *app.Instance) (label string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("LeakCheck", "Could not describe leaked owner: %v", r)
			label = fallbackLabel
		}
	}()

	switch owner.Kind() {
	case app.KindEngine:
		if owner.MountPoint() == "" {
			return "Engine"
		}
		return fmt.Sprintf("Engine [mounted at `/%s`]", owner.MountPoint())
	case app.KindApplication:
		return "Application"
	default:
		return fallbackLabel
	}
}

const leakPrefix = "Leaked "

// LeakMessage is the failure message pushed for a leaked owner.
func LeakMessage(label string) string {
	return leakPrefix + label
}

// IsLeakMessage reports whether msg was produced by LeakMessage.
func IsLeakMessage(msg string) bool {
	return strings.HasPrefix(msg, leakPrefix)
}

// SyntheticTestName names the synthesized test carrying the leaks of testID.
func SyntheticTestName(testID string) string {
	return fmt.Sprintf("tests leaking owner found within `%s`", testID)
}

func kindOf(owner *app.Instance) (kind string) {
	defer func() {
		if recover() != nil {
			kind = "unknown"
		}
	}()
	return string(owner.Kind())
}

// describeAll turns leaks into failure messages, keeping the grouping. The
// owners themselves are not retained.
func describeAll(leaks Leaks) [][]string {
	out := make([][]string, len(leaks))
	for i, leak := range leaks {
		msgs := make([]string, len(leak.Owners))
		for j, owner := range leak.Owners {
			msgs[j] = LeakMessage(Describe(owner))
		}
		out[i] = msgs
	}
	return out
}

// ReportToTest pushes one failing assertion per leaked owner onto t and
// raises its expected assertion count to match.
func ReportToTest(t Test, leaks Leaks) {
	if len(leaks) == 0 {
		return
	}
	defer recoverReport()

	for i, msgs := range describeAll(leaks) {
		t.AddExpected(len(msgs))
		for _, msg := range msgs {
			t.PushResult(false, msg)
		}
		logging.Info("LeakCheck", "%s leaked %d owner(s) (recorded under %s)",
			t.ID(), len(msgs), leaks[i].TestID)
	}
}

// ReportAsModule enqueues a LeakModuleName module on fw with one failing
// test per originating test id.
func ReportAsModule(fw Framework, leaks Leaks) {
	if len(leaks) == 0 {
		return
	}
	defer recoverReport()

	described := describeAll(leaks)
	tests := make([]SyntheticTest, len(leaks))
	for i, leak := range leaks {
		msgs := described[i]
		tests[i] = SyntheticTest{
			Name: SyntheticTestName(leak.TestID),
			Run: func(assert Assert) {
				assert.Expect(len(msgs))
				for _, msg := range msgs {
					assert.PushResult(false, msg)
				}
			},
		}
		logging.Info("LeakCheck", "%s leaked %d owner(s)", leak.TestID, len(msgs))
	}
	fw.AddModule(LeakModuleName, tests)
}

func recoverReport() {
	if r := recover(); r != nil {
		logging.Error("LeakCheck", fmt.Errorf("%v", r), "Failed to report leaked owners")
	}
}
