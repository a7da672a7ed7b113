// Copyright 2025 walteh LLC
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

package scan_test

import (
	"context"
	"fmt"

	"github.com/walteh/rxscan/pkg/scan"
)

func ExampleReplace() {
	out, err := scan.Replace(context.Background(), "abcd", "(bc)", `_$1_`, 0)
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: a_bc_d
}

func ExampleScan() {
	err := scan.Scan(context.Background(), scan.Request{
		Text:     "abcaad",
		Pattern:  "a",
		Template: "BC",
		Listener: scan.ListenerFunc(func(seg scan.Segment) {
			fmt.Printf("[%d,%d) %q -> %q matched=%v\n", seg.FromSrc, seg.ToSrc, seg.SrcText, seg.DstText, seg.Matched)
		}),
	})
	if err != nil {
		panic(err)
	}
	// Output:
	// [0,0) "" -> "" matched=false
	// [0,1) "a" -> "BC" matched=true
	// [1,3) "bc" -> "bc" matched=false
	// [3,4) "a" -> "BC" matched=true
	// [4,4) "" -> "" matched=false
	// [4,5) "a" -> "BC" matched=true
	// [5,6) "d" -> "d" matched=false
}

func ExampleFind() {
	c := &scan.Collector{}
	if err := scan.Find(context.Background(), "one two three", `t\w+`, 0, c); err != nil {
		panic(err)
	}
	for _, m := range c.Matches() {
		fmt.Println(m.FromSrc, m.SrcText)
	}
	// Output:
	// 4 two
	// 8 three
}
