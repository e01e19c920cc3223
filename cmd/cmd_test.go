/*
	Timelinize
	Copyright (c) 2013 Matthew Holt

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package stampcmd

import (
	"flag"
	"testing"

	"github.com/timelinize/takeoutstamp/stamp"
)

func TestApplyFlags(t *testing.T) {
	if err := flag.CommandLine.Parse([]string{"-i", "/takeout", "-output", "/out", "-workers", "3", "-write-geo"}); err != nil {
		t.Fatal(err)
	}
	cfg := &stamp.Config{InputDir: "/from-config", ErrorDir: "/err", Workers: 8, Verbose: true}
	applyFlags(cfg)

	if cfg.InputDir != "/takeout" {
		t.Errorf("expected flag to override input, got '%s'", cfg.InputDir)
	}
	if cfg.OutputDir != "/out" {
		t.Errorf("expected output from flag, got '%s'", cfg.OutputDir)
	}
	if cfg.ErrorDir != "/err" {
		t.Errorf("expected error directory from config to be kept, got '%s'", cfg.ErrorDir)
	}
	if cfg.Workers != 3 || !cfg.WriteGeo {
		t.Errorf("unexpected options: %+v", cfg)
	}
	if !cfg.Verbose {
		t.Error("flag that was not given should not override config")
	}
	if err := checkFlagParsing(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
