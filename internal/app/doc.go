// Package app wires the order payments service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from the YAML file and SELLERPULSE_* variables
//	2. Initialize logging and OpenTelemetry (Prometheus metrics, optional traces)
//	3. Open the upload store and build the column schema registry
//	4. Create the report and health services
//	5. Set up middleware and HTTP routes
//	6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests and
// flushes telemetry. Initialization errors are returned to the caller; the
// package never calls os.Exit.
package app
