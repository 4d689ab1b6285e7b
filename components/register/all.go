// Package register registers all components.
package register

import (
	// register components.
	_ "go.tdeck.dev/pda/components/board/fake"
	_ "go.tdeck.dev/pda/components/board/genericlinux"
	_ "go.tdeck.dev/pda/components/board/periphgpio"
	_ "go.tdeck.dev/pda/components/input/keyboard"
	_ "go.tdeck.dev/pda/components/input/trackball"
)
