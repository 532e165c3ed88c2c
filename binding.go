// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"errors"

	"github.com/pion/natpunch/stun"
)

// handleBindingSuccess stores the mapped address of a binding success
// response and notifies with VerbBind. MAPPED-ADDRESS is preferred over
// XOR-MAPPED-ADDRESS.
func (s *Session) handleBindingSuccess(m stun.Message) error {
	xored := false
	attr, ok := m.Find(stun.AttrMappedAddress)
	if !ok {
		if attr, ok = m.Find(stun.AttrXORMappedAddress); !ok {
			s.log.Error("Attribute not found: mapped address")

			return ErrNoData
		}
		xored = true
	}

	addr, err := stun.DecodeMappedAddress(attr, m.Cookie, xored)
	switch {
	case errors.Is(err, stun.ErrUnsupportedFamily):
		s.log.Error("Attribute error: mapped address is IPv6 (unsupported)")

		return ErrUnsupported
	case err != nil:
		s.log.Errorf("Attribute error: %v", err)

		return ErrNoData
	}

	s.Status.reset(MapMapped)
	s.Status.MappedAddr = addr.Addr
	s.Status.MappedPort = addr.Port
	s.metrics.setMapped(true)
	s.log.Infof("[%s] Mapped to %s", s.Params.Remote(), addr)

	// Failure is logged by notify and does not undo the mapping.
	_ = s.notify(VerbBind, addr.Addr, addr.Port)

	return nil
}

// handleBindingError stores the code of a binding error response. No
// notification is issued on this path.
func (s *Session) handleBindingError(m stun.Message) error {
	attr, ok := m.Find(stun.AttrErrorCode)
	if !ok {
		s.log.Error("Attribute not found: error code")

		return ErrNoData
	}
	code, err := stun.DecodeErrorCode(attr)
	if err != nil {
		s.log.Errorf("Attribute error: %v", err)

		return ErrNoData
	}

	s.Status.reset(MapError)
	s.Status.MapError = code
	s.metrics.setMapped(false)
	s.log.Infof("[%s] Error %d", s.Params.Remote(), int(code))

	return nil
}
