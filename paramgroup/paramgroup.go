package paramgroup

import (
	"fmt"
	"slices"
)

// Param describes one model parameter for grouping purposes.
//
// The flags mirror how the training stack tags parameters; Split only
// classifies, it never inspects parameter data.
type Param struct {
	// Name identifies the parameter, e.g. "layers.7.ffn.w1".
	Name string

	// FP32 marks a parameter kept in float32 master precision rather
	// than the low-precision compute dtype.
	FP32 bool

	// Norm marks a normalization-layer parameter.
	Norm bool

	// Gate marks a mixture-of-experts router gate parameter.
	Gate bool

	// Expert marks an expert-owned parameter. ExpertGroup must name
	// the optimizer bucket its gradients synchronize in.
	Expert bool

	// ExpertGroup is the expert bucket name, e.g. "moe_ep_size_4",
	// matching a name from Registry.ExpertGroupNames. Empty unless
	// Expert is set.
	ExpertGroup string
}

// Group is one optimizer parameter group.
//
// Norm, Gate and MoE tag the special groups so the optimizer can pick
// its gradient-synchronization behavior per group: norm and gate
// parameters are force-synchronized across expert ranks, and each MoE
// group reduces over its own expert-data group instead of the full
// data-parallel group.
type Group struct {
	// Name identifies the group ("default", "fp32", "norm", "gate",
	// or an expert bucket name).
	Name string

	// Params holds the group's members.
	Params []Param

	// WeightDecay is the optimizer weight decay for the group.
	WeightDecay float64

	// Norm marks the forced-sync normalization group.
	Norm bool

	// Gate marks the forced-sync router gate group.
	Gate bool

	// MoE marks an expert bucket group.
	MoE bool
}

// Split partitions parameters into the optimizer groups their gradient
// synchronization requires.
//
// Starting from the caller's groups (typically one "default" group
// holding every parameter), Split moves special parameters out into
// dedicated groups:
//
//   - "fp32": parameters held in float32 master precision
//   - "norm", "gate": forced-sync groups, created only when expert
//     parallelism is active
//   - one group per expert bucket name, holding that bucket's expert
//     parameters
//
// expertNames comes from Registry.ExpertGroupNames; an empty slice
// means expert parallelism is inactive, and expert-specific groups are
// neither created nor allowed. Input groups keep their remaining
// parameters and their order; new groups are appended in a fixed order
// and only when non-empty, so the result is deterministic.
//
// Attributes of the first input group (weight decay) carry over to
// every created group.
//
// Returns:
//   - []Group: The input groups followed by the non-empty new groups
//   - error: A parameter references an unknown or missing expert bucket
func Split(groups []Group, expertNames []string) ([]Group, error) {
	moe := len(expertNames) > 0

	special := map[string]*Group{
		"fp32": {Name: "fp32"},
	}
	order := []string{"fp32"}
	if moe {
		special["norm"] = &Group{Name: "norm", Norm: true}
		special["gate"] = &Group{Name: "gate", Gate: true}
		order = append(order, "norm", "gate")
		for _, name := range expertNames {
			special[name] = &Group{Name: name, MoE: true}
			order = append(order, name)
		}
	}

	// Created groups inherit the optimizer attributes of the input.
	if len(groups) > 0 {
		for _, g := range special {
			g.WeightDecay = groups[0].WeightDecay
		}
	}

	out := slices.Clone(groups)
	for i, group := range out {
		kept := make([]Param, 0, len(group.Params))
		for _, param := range group.Params {
			target, err := classify(param, moe)
			if err != nil {
				return nil, err
			}
			if target == "" {
				kept = append(kept, param)

				continue
			}

			dest, ok := special[target]
			if !ok {
				return nil, fmt.Errorf("parameter %q references unknown expert group %q", param.Name, target)
			}
			dest.Params = append(dest.Params, param)
		}
		out[i].Params = kept
	}

	for _, name := range order {
		if g := special[name]; len(g.Params) > 0 {
			out = append(out, *g)
		}
	}

	return out, nil
}

// classify returns the special group a parameter moves to, or "" to
// keep it in its original group.
//
// Order matters: norm and gate take precedence over fp32, because the
// forced-sync groups must capture their parameters regardless of
// precision, and expert parameters are matched last.
func classify(param Param, moe bool) (string, error) {
	switch {
	case moe && param.Norm:
		return "norm", nil
	case param.Gate:
		return "gate", nil
	case param.FP32:
		return "fp32", nil
	case param.Expert:
		if param.ExpertGroup == "" {
			return "", fmt.Errorf("expert parameter %q has no expert group name", param.Name)
		}

		return param.ExpertGroup, nil
	default:
		return "", nil
	}
}
