// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package graph stores the relationship graphs built from externally
// supplied edge facts.
//
// A Store keeps one directed graph per edge kind (import, call, dataflow,
// module dependency) and a combined view across all kinds. Node and edge
// insertion is idempotent. Analyze reports strongly-connected components,
// self-loops, fan-in/fan-out and a degree-centrality ranking; ImpactSet
// answers bounded reachability queries in either direction.
package graph
