/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package main

import (
	"log"
	"os"

	"github.com/insolar/formbot"
)

func main() {
	addr := "0.0.0.0:9031"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}
	log.Printf("serving form stub on %s", addr)
	formbot.RunTestServer(addr, formbot.NewFormService(0))
	select {}
}
