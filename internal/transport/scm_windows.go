//go:build windows

package transport

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc/mgr"

	"svcseq/internal/services"
)

// SCM talks to the remote Service Control Manager directly through the
// Win32 API, without spawning sc.exe.
type SCM struct{}

// NewSCM creates a native Service Control Manager transport.
func NewSCM() *SCM {
	return &SCM{}
}

// Name implements Transport.
func (s *SCM) Name() string { return string(KindSCM) }

// serviceHandle holds an open manager and service handle pair. Access
// rights are kept minimal so a non-administrator with start rights works.
type serviceHandle struct {
	manager *mgr.Mgr
	service *mgr.Service
}

func openService(server, name string, desiredAccess uint32) (*serviceHandle, error) {
	host, err := windows.UTF16PtrFromString(uncPath(server))
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenSCManager(host, nil, windows.SC_MANAGER_CONNECT)
	if err != nil {
		return nil, fmt.Errorf("open service manager on %s: %w", server, err)
	}
	m := &mgr.Mgr{Handle: h}

	svcName, err := windows.UTF16PtrFromString(name)
	if err != nil {
		m.Disconnect()
		return nil, err
	}
	sh, err := windows.OpenService(h, svcName, desiredAccess)
	if err != nil {
		m.Disconnect()
		return nil, fmt.Errorf("open service %s on %s: %w", name, server, err)
	}
	return &serviceHandle{manager: m, service: &mgr.Service{Name: name, Handle: sh}}, nil
}

func (h *serviceHandle) close() {
	h.service.Close()
	h.manager.Disconnect()
}

// Query implements Transport. The report carries the numeric
// SERVICE_STATE code.
func (s *SCM) Query(ctx context.Context, target services.ServiceTarget) (services.Report, error) {
	if err := ctx.Err(); err != nil {
		return services.Report{}, err
	}
	h, err := openService(target.Server, target.ServiceName, windows.SERVICE_QUERY_STATUS)
	if err != nil {
		return services.Report{}, err
	}
	defer h.close()

	st, err := h.service.Query()
	if err != nil {
		return services.Report{}, fmt.Errorf("query %s: %w", target, err)
	}
	return services.Report{Format: services.FormatCode, Raw: strconv.Itoa(int(st.State))}, nil
}

// Start implements Transport.
func (s *SCM) Start(ctx context.Context, target services.ServiceTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h, err := openService(target.Server, target.ServiceName, windows.SERVICE_START)
	if err != nil {
		return err
	}
	defer h.close()

	if err := h.service.Start(); err != nil {
		return fmt.Errorf("start %s: %w", target, err)
	}
	return nil
}
