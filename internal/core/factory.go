// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"invoice-architect/internal/config"
	"invoice-architect/internal/invoice"
	"invoice-architect/internal/observability"
	"invoice-architect/internal/preprocessors"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
	textextractpdftextlib "invoice-architect/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// BuildPreprocessorManager registers the document extractor before the
// plain text passthrough, so extension matches win over text/* MIME types.
func BuildPreprocessorManager(opts Options) *preprocessors.PreprocessorManager {
	inf := opts.Inflater
	if inf == nil {
		maxInflate := opts.MaxInflateSize
		if maxInflate <= 0 {
			maxInflate = inflatelib.DefaultMaxOutput
		}
		inf = inflatelib.NewNative(maxInflate)
	}

	manager := preprocessors.NewPreprocessorManager()
	manager.RegisterPreprocessor(preprocessors.NewTextPreprocessor(preprocessors.TextOptions{
		PDFEngine: opts.PDFEngine,
		Inflater:  inf,
		MaxPages:  opts.MaxPages,
	}))
	manager.RegisterPreprocessor(preprocessors.NewPlainTextPreprocessor())
	return manager
}

// OptionsFromConfig maps the import section of cfg onto importer options.
// Apply a profile to cfg first when one is selected.
func OptionsFromConfig(cfg *config.Config, observer *observability.StandardObserver) (Options, error) {
	engine, err := textextractpdftextlib.ParseEngine(cfg.Import.PDFEngine)
	if err != nil {
		return Options{}, err
	}

	currencies := invoice.DefaultCurrencies()
	if len(cfg.Import.ExtraCurrencies) > 0 {
		currencies, err = currencies.With(cfg.Import.ExtraCurrencies...)
		if err != nil {
			return Options{}, fmt.Errorf("import.extra_currencies: %w", err)
		}
	}

	return Options{
		Currencies:     currencies,
		Extended:       cfg.Import.Extended,
		MaxQuantity:    cfg.Import.MaxQuantity,
		PDFEngine:      engine,
		MaxPages:       cfg.Import.MaxPages,
		MaxInflateSize: cfg.Import.MaxInflateSize,
		MaxFileSize:    cfg.Import.MaxFileSize,
		Observer:       observer,
	}, nil
}
