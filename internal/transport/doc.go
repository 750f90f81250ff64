// Package transport contains the remote execution collaborators that query
// and start Windows services.
//
// Every transport implements the same two-call contract, Query and Start,
// so the startup control flow never depends on how a command reaches the
// remote host:
//
//   - SC: runs `sc \\server query|start name` locally
//   - PowerShell: runs Invoke-Command against the server
//   - SCM: calls the remote Service Control Manager through the Win32 API
//     (Windows builds only)
//   - SSH: runs sc.exe on a Windows jump host over SSH
//
// Transports return errors. Turning those errors into statuses is the
// controller's job.
package transport
