// Package sdmgo provides species distribution modeling for Go: k-fold
// cross-validation of presence/pseudo-absence classifiers, threshold-based
// accuracy metrics (AUC, kappa, TSS), and background-extent selection by
// growth-curve fitting.
//
// The library orchestrates opaque fit/predict classifiers rather than
// implementing particular statistical algorithms; a weighted logistic GLM is
// built in, and further algorithm families (random forest, SVM, MaxEnt,
// MARS, CART variants) plug in through the core/model registry.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/ecospace/sdmgo/core/model"
//	    "github.com/ecospace/sdmgo/sdm"
//	)
//
//	func main() {
//	    data := loadSpeciesData() // []sdm.SpeciesData from your raster pipeline
//
//	    results, err := sdm.Train(context.Background(), data,
//	        []model.Family{model.GLM},
//	        sdm.WithFolds(10),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for species, byRealization := range results {
//	        _ = byRealization
//	        log.Printf("trained %s", species)
//	    }
//	}
//
// # Packages
//
//   - sdm: public entry point; per-species and batch orchestration
//   - crossval: fold partitioning and the cross-validation driver
//   - metrics: AUC, kappa, TSS and optimal-threshold selection
//   - extent: background-extent selection and diagnostic plots
//   - linear: the built-in weighted logistic GLM
//   - core/model: the trainer contract and algorithm-family registry
//   - pkg/errors, pkg/log: structured errors, warnings and logging
package sdmgo
