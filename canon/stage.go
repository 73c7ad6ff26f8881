package canon

import (
	"fmt"
	"strings"
)

// Stage names a step of the rewrite. Stages always run in this order.
type Stage int

const (
	StageSmith Stage = iota + 1
	StageRelax
	StageGraph
	StageCanon
)

var stageNames = [...]string{
	StageSmith: "smith",
	StageRelax: "relax",
	StageGraph: "graph",
	StageCanon: "canon",
}

func (s Stage) String() string {
	if 0 < s && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage accepts a stage name; "full" is StageCanon.
func ParseStage(s string) (Stage, error) {
	name := strings.ToLower(s)
	if name == "full" || name == "" {
		return StageCanon, nil
	}
	for st := StageSmith; st <= StageCanon; st++ {
		if stageNames[st] == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("canon: unknown stage %q", s)
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	st, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
