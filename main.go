package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/skillport/internal/app"
)

// @title           SkillPort Verification API
// @version         1.0
// @description     SkillPort email ownership verification with one-time codes.
// @contact.name    SkillPort Support
// @contact.email   support@skillport.dev
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
