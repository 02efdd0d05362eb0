// Package sdm is the public entry point for species distribution model
// training. It orchestrates cross-validation across background extents,
// extent selection, and the batch loop over species, pseudo-absence
// realizations, algorithms and baseline climate datasets.
package sdm

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/crossval"
	"github.com/ecospace/sdmgo/extent"
	"github.com/ecospace/sdmgo/pkg/errors"
	"github.com/ecospace/sdmgo/pkg/log"

	// Register the built-in GLM family.
	_ "github.com/ecospace/sdmgo/linear"
)

// ExtentData is one background-extent dataset: presence/pseudo-absence
// labels with their extracted covariates, sampled at the given radius.
type ExtentData struct {
	Radius float64
	X      mat.Matrix
	Y      *mat.VecDense
}

// BaselineData groups the extent datasets built against one baseline
// climate dataset.
type BaselineData struct {
	Name    string
	Extents []ExtentData
}

// RealizationData groups the baselines of one pseudo-absence realization.
type RealizationData struct {
	Name      string
	Baselines []BaselineData
}

// SpeciesData is the full input for one species.
type SpeciesData struct {
	Name         string
	Realizations []RealizationData
}

// SpeciesResult is the outcome of per-species training at the selected
// extent. Immutable once returned.
type SpeciesResult struct {
	// Bundle is the cross-validation result at the selected extent; its
	// Model field holds the all-data model for downstream application.
	Bundle *crossval.Bundle

	// Selection describes the chosen background extent.
	Selection extent.Selection

	// Extents and AUCs are the tried radii and their cross-validated AUCs,
	// aligned by index.
	Extents []float64
	AUCs    []float64
}

// Result is the per-unit slot in the batch output: either a SpeciesResult
// or the isolated error that felled this unit.
type Result struct {
	*SpeciesResult
	Err error
}

// Results maps species → realization → algorithm → baseline to the unit
// outcome.
type Results map[string]map[string]map[string]map[string]*Result

// TrainSpecies trains one species on its background-extent datasets:
// cross-validate each extent to build the AUC profile, select an extent,
// and cross-validate again at the winning extent for the final bundle.
//
// The winning extent is deliberately recomputed rather than cached from the
// first pass; the first pass exists only to produce the AUC profile.
func TrainSpecies(trainer model.Trainer, extents []ExtentData, opts ...Option) (*SpeciesResult, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return trainSpecies(cfg, trainer, extents)
}

func trainSpecies(cfg config, trainer model.Trainer, extents []ExtentData) (*SpeciesResult, error) {
	if len(extents) == 0 {
		return nil, errors.NewValueError("train species", "no extent datasets")
	}

	v := &crossval.Validator{
		K:         cfg.k,
		Weighted:  cfg.weighted,
		Threshold: cfg.threshold,
		Policy:    cfg.policy,
		Seed:      cfg.seed,
	}

	radii := make([]float64, len(extents))
	aucs := make([]float64, len(extents))
	for i, ed := range extents {
		bundle, err := v.Run(trainer, ed.X, ed.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "extent %g", ed.Radius)
		}
		radii[i] = ed.Radius
		aucs[i] = bundle.AUC
	}

	sel, err := extent.Select(radii, aucs)
	if err != nil {
		return nil, err
	}

	winner := extents[sel.Index]
	bundle, err := v.Run(trainer, winner.X, winner.Y)
	if err != nil {
		return nil, errors.Wrapf(err, "selected extent %g", winner.Radius)
	}

	return &SpeciesResult{
		Bundle:    bundle,
		Selection: sel,
		Extents:   radii,
		AUCs:      aucs,
	}, nil
}

// Train runs the full batch: every species × realization × algorithm ×
// baseline combination is trained independently on a bounded worker pool.
// A failure in one unit never aborts its siblings; it is recorded in that
// unit's Result. Train itself only returns an error for empty input or a
// cancelled context.
func Train(ctx context.Context, data []SpeciesData, algorithms []model.Family, opts ...Option) (Results, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(data) == 0 {
		return nil, errors.NewValueError("train", "no species data")
	}
	if len(algorithms) == 0 {
		return nil, errors.NewValueError("train", "no algorithms")
	}

	type unit struct {
		species, realization, baseline string
		family                         model.Family
		extents                        []ExtentData
		res                            *Result
		seed                           uint64
	}

	// Pre-build the nested result map so each worker writes only to its own
	// pre-allocated slot; no locking is needed afterwards.
	results := make(Results, len(data))
	var units []unit
	for _, sp := range data {
		results[sp.Name] = make(map[string]map[string]map[string]*Result, len(sp.Realizations))
		for _, re := range sp.Realizations {
			results[sp.Name][re.Name] = make(map[string]map[string]*Result, len(algorithms))
			for _, family := range algorithms {
				results[sp.Name][re.Name][string(family)] = make(map[string]*Result, len(re.Baselines))
				for _, bl := range re.Baselines {
					res := &Result{}
					results[sp.Name][re.Name][string(family)][bl.Name] = res
					units = append(units, unit{
						species:     sp.Name,
						realization: re.Name,
						baseline:    bl.Name,
						family:      family,
						extents:     bl.Extents,
						res:         res,
						seed:        cfg.seed + uint64(len(units)),
					})
				}
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)

	for i := range units {
		u := &units[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			unitCfg := cfg
			unitCfg.seed = u.seed
			u.res.SpeciesResult, u.res.Err = trainUnit(unitCfg, u.species, u.realization, u.baseline, u.family, u.extents)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// trainUnit runs one (species, realization, algorithm, baseline) unit.
func trainUnit(cfg config, species, realization, baseline string, family model.Family, extents []ExtentData) (*SpeciesResult, error) {
	trainer, err := model.New(family, cfg.algorithmArgs[family])
	if err != nil {
		return nil, err
	}

	sr, err := trainSpecies(cfg, trainer, extents)
	if err != nil {
		slog.Warn("training unit failed",
			log.SpeciesKey, species,
			log.RealizationKey, realization,
			log.AlgorithmKey, string(family),
			log.BaselineKey, baseline,
			log.ErrAttr(err),
		)
		return nil, err
	}

	if cfg.diagramDir != "" {
		name := fmt.Sprintf("%s_%s_%s_%s.png", species, realization, family, baseline)
		if perr := extent.Plot(filepath.Join(cfg.diagramDir, name), sr.Extents, sr.AUCs, sr.Selection); perr != nil {
			// Diagrams are observational; a render failure must not fail
			// the unit.
			errors.Warn(errors.Wrap(perr, "extent diagram"))
		}
	}

	slog.Info("training unit complete",
		log.SpeciesKey, species,
		log.RealizationKey, realization,
		log.AlgorithmKey, string(family),
		log.BaselineKey, baseline,
		log.ExtentKey, sr.Selection.Extent,
		log.AUCKey, sr.Bundle.AUC,
		log.TSSKey, sr.Bundle.TSS,
		log.KappaKey, sr.Bundle.Kappa,
	)
	return sr, nil
}
