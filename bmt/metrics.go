// Copyright 2024 The go-bmt Authors
// This file is part of the go-bmt library.
//
// The go-bmt library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-bmt library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-bmt library. If not, see <http://www.gnu.org/licenses/>.

package bmt

import "github.com/ethereum/go-ethereum/metrics"

var chunksHashedCounter = metrics.NewRegisteredCounter("bmt/chunks/hashed", nil)
