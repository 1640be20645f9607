/*
Package sfnnue is a Go port of Stockfish's NNUE evaluation.

This code is derived from Stockfish, a UCI chess playing engine.
Copyright (C) 2004-2026 The Stockfish developers (see AUTHORS file)

Stockfish is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Stockfish is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.

Original C++ source: https://github.com/official-stockfish/Stockfish

# Architecture

This package implements an NNUE (Efficiently Updatable Neural Network)
evaluation function derived from Stockfish's HalfKAv2_hm feature set with
horizontal mirroring, extended with threat features and trimmed to a
single network with an 8-bucket output layer selected by piece count.

# Usage

	net, err := sfnnue.Load("weights.nnue")
	if err != nil {
		log.Fatal(err)
	}

	acc := sfnnue.NewAccumulator(net.Weights.Mid)
	net.ComputeAccumulator(activeFeatureIndices, acc.Values[0])
*/
package sfnnue
