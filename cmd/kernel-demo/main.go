package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"kernos/pkg/audit"
	"kernos/pkg/capability"
	"kernos/pkg/cgroup"
	"kernos/pkg/event"
	"kernos/pkg/process"
)

func main() {
	fmt.Println("=== kernos Resource-Control Core Demo ===")
	fmt.Println()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Boot the core subsystems, leaf first.
	auditLog := audit.New(logger.Named("audit"))
	auditLog.Reset()

	checker := capability.NewChecker(auditLog, logger.Named("capability"))
	registry := process.NewRegistry(process.NewVirtualBackend(), checker, auditLog, logger.Named("process"))
	hierarchy := cgroup.NewHierarchy(checker, auditLog, registry, logger.Named("cgroup"))
	events := event.NewManager(logger.Named("event"))

	boot := registry.Task(capability.BootstrapPID)
	fmt.Printf("Bootstrap task: pid=%d uid=%d\n", boot.PID, boot.UID)

	// Grant the bootstrap task cgroup administration. Bootstrap starts with
	// CHOWN and KILL only.
	fmt.Println("\n--- Capabilities ---")
	fmt.Printf("CAP_KILL: %v\n", checker.Capable(boot, capability.CapKill))
	fmt.Printf("CAP_DAC_OVERRIDE before grant: %v\n", checker.Capable(boot, capability.CapDacOverride))
	checker.SetCapability(boot.Caps, capability.CapDacOverride, true)
	fmt.Printf("CAP_DAC_OVERRIDE after grant: %v\n", checker.Capable(boot, capability.CapDacOverride))

	// Spawn a worker and wait for it.
	fmt.Println("\n--- Process Lifecycle ---")
	worker, err := registry.CreateProcess(boot, func(arg interface{}) int {
		events.Publish(event.NewEvent(1, "worker ran", event.TypeSystem))
		return arg.(int)
	}, 0)
	if err != nil {
		log.Fatalf("Failed to create process: %v", err)
	}
	fmt.Printf("Created process: pid=%d state=%s\n", worker.PID, worker.State())

	// Attach the worker to a cgroup while it is alive.
	fmt.Println("\n--- Cgroup Hierarchy ---")
	system, err := hierarchy.Create(boot, "system", 0)
	if err != nil {
		log.Fatalf("Failed to create cgroup: %v", err)
	}
	workers, err := hierarchy.Create(boot, "workers", system.ID())
	if err != nil {
		log.Fatalf("Failed to create child cgroup: %v", err)
	}
	if err := hierarchy.AttachTask(boot, workers.ID(), worker.PID); err != nil {
		log.Fatalf("Failed to attach task: %v", err)
	}
	fmt.Print(hierarchy.Dump())

	code, err := registry.WaitProcess(worker)
	if err != nil {
		log.Fatalf("Failed to wait: %v", err)
	}
	fmt.Printf("Worker exited: code=%d state=%s\n", code, worker.State())
	registry.PrintProcessInfo(worker)

	// A task without CAP_KILL is denied; the denial lands in the audit trail.
	fmt.Println("\n--- Kill Authorization ---")
	victim, err := registry.CreateProcess(boot, func(interface{}) int {
		select {} // runs until killed
	}, nil)
	if err != nil {
		log.Fatalf("Failed to create process: %v", err)
	}
	nobody := capability.NewTask(9999, 1000)
	if err := registry.KillProcess(nobody, victim, process.SignalKill); err != nil {
		fmt.Printf("Unprivileged kill denied: %v\n", err)
	}
	if err := registry.KillProcess(boot, victim, process.SignalKill); err != nil {
		log.Fatalf("Privileged kill failed: %v", err)
	}
	code, _ = registry.WaitProcess(victim)
	fmt.Printf("Victim terminated: code=%d state=%s\n", code, victim.State())

	// Tear the hierarchy down and show the audit trail.
	if err := hierarchy.Destroy(boot, system.ID()); err != nil {
		log.Fatalf("Failed to destroy cgroup: %v", err)
	}

	fmt.Println("\n--- Audit Trail ---")
	for _, rec := range auditLog.Flush() {
		fmt.Printf("#%d type=%s uid=%d pid=%d msg=%q\n",
			rec.Timestamp, rec.Type, rec.UID, rec.PID, rec.Message)
	}
}
