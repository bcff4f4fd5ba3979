// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"github.com/specialistvlad/blockflow/internal/registry"
	"github.com/specialistvlad/blockflow/modules/expression"
	"github.com/specialistvlad/blockflow/modules/print"
	"github.com/specialistvlad/blockflow/modules/property"
)

// coreModules is the definitive list of all modules that are compiled into
// the blockflow binary.
func coreModules() []registry.Module {
	return []registry.Module{
		&expression.Module{},
		&print.Module{},
		&property.Module{},
	}
}
