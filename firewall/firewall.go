// Copyright 2015 Matthew Holt and The Caddy Authors
// Copyright 2026 The httpd Authors
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

// Package firewall opens and closes the iptables rule that admits
// traffic to the port the server package binds to. It is entirely
// decoupled from the rewrite engine: the firewall-port utility is
// listed in spec §1 as an external collaborator with a minimal
// contract, not something rewrite rules ever touch directly.
package firewall

import (
	"fmt"

	"github.com/coreos/go-iptables/iptables"
)

const (
	table = "filter"
	chain = "HTTPD-INPUT"
)

// PortOpener manages a dedicated iptables chain that admits inbound
// traffic to one TCP port for the lifetime of the process.
type PortOpener struct {
	ipt  *iptables.IPTables
	port int
}

// NewPortOpener builds a PortOpener for the given TCP port using the
// host's iptables binary. It does not modify any rules until Open is
// called.
func NewPortOpener(port int) (*PortOpener, error) {
	ipt, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, fmt.Errorf("firewall: %w", err)
	}
	return &PortOpener{ipt: ipt, port: port}, nil
}

// Open creates the chain (if absent), jumps INPUT traffic into it, and
// appends an ACCEPT rule for the configured port.
func (p *PortOpener) Open() error {
	if err := p.ipt.NewChain(table, chain); err != nil {
		if exists, checkErr := p.ipt.ChainExists(table, chain); checkErr != nil || !exists {
			return fmt.Errorf("firewall: create chain: %w", err)
		}
	}
	if err := p.ipt.Insert(table, "INPUT", 1, "-j", chain); err != nil {
		return fmt.Errorf("firewall: jump to chain: %w", err)
	}
	rule := p.rule()
	if err := p.ipt.Append(table, chain, rule...); err != nil {
		return fmt.Errorf("firewall: append rule: %w", err)
	}
	return nil
}

// Close removes the ACCEPT rule, unhooks the chain from INPUT, and
// clears and deletes the chain, whatever other rules it still holds.
func (p *PortOpener) Close() error {
	rule := p.rule()
	if err := p.ipt.Delete(table, chain, rule...); err != nil {
		return fmt.Errorf("firewall: delete rule: %w", err)
	}
	if err := p.ipt.Delete(table, "INPUT", "-j", chain); err != nil {
		return fmt.Errorf("firewall: unhook chain: %w", err)
	}
	if err := p.ipt.ClearAndDeleteChain(table, chain); err != nil {
		return fmt.Errorf("firewall: delete chain: %w", err)
	}
	return nil
}

func (p *PortOpener) rule() []string {
	return []string{"-p", "tcp", "--dport", fmt.Sprint(p.port), "-j", "ACCEPT"}
}
