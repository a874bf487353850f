package collabtools

import (
	"sort"
	"strings"

	"github.com/odvcencio/subagentkit/pkg/roletemplate"
)

// preset names the reasoning efforts a model slug supports, beyond the
// universally-accepted "none". This table stands in for a provider
// model-catalog lookup; wiring a full catalog
// here would pull this core into the HTTP client machinery that the
// spec's non-goals explicitly exclude ("implementing model HTTP
// clients"), so the slugs and supported efforts this core actually
// needs to validate against are declared locally instead.
var presets = map[string][]roletemplate.ReasoningEffort{
	"gpt-5-codex": {
		roletemplate.ReasoningMin, roletemplate.ReasoningLow, roletemplate.ReasoningMedium,
		roletemplate.ReasoningHigh, roletemplate.ReasoningXHigh,
	},
	"gpt-5.1-codex": {
		roletemplate.ReasoningLow, roletemplate.ReasoningMedium, roletemplate.ReasoningHigh,
	},
	"gpt-5.1-codex-mini": {
		roletemplate.ReasoningLow, roletemplate.ReasoningMedium, roletemplate.ReasoningHigh,
	},
	"gpt-5.1": {
		roletemplate.ReasoningLow, roletemplate.ReasoningMedium, roletemplate.ReasoningHigh,
	},
	"o3": {
		roletemplate.ReasoningLow, roletemplate.ReasoningMedium, roletemplate.ReasoningHigh,
	},
}

// validateModelAndEffort checks model against the known preset list and
// effort against that model's supported efforts. "none" is always
// accepted for any known model.
func validateModelAndEffort(model string, effort roletemplate.ReasoningEffort) error {
	supported, ok := presets[model]
	if !ok {
		return RespondToModel("model %q is not a supported model", model)
	}
	if effort == roletemplate.ReasoningNone {
		return nil
	}
	for _, e := range supported {
		if e == effort {
			return nil
		}
	}
	return RespondToModel(
		"reasoning_effort %q is not supported for model %q. Supported efforts: %s",
		effort, model, formatEfforts(supported),
	)
}

func formatEfforts(efforts []roletemplate.ReasoningEffort) string {
	names := make([]string, 0, len(efforts)+1)
	names = append(names, "none")
	for _, e := range efforts {
		names = append(names, string(e))
	}
	sort.Strings(names[1:])
	return strings.Join(names, ", ")
}
