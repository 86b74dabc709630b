// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/vyctl/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for vyctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_vyctl()
{
    local cur prev cmd sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    local conn="--api-url -u --timeout --saving-method"
    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "config firewall ntp ssh routing dhcp show power cache console completion --help --version $conn" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local --output -o --sort -s --titles -t"

    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$cmd" in
        config)     COMPREPLY=( $(compgen -W "show set delete save load edit export env" -- "$cur") ) ;;
        firewall)   COMPREPLY=( $(compgen -W "groups group-create group-delete" -- "$cur") ) ;;
        ntp)        COMPREPLY=( $(compgen -W "servers status add remove" -- "$cur") ) ;;
        ssh)        COMPREPLY=( $(compgen -W "show update" -- "$cur") ) ;;
        routing)    COMPREPLY=( $(compgen -W "table" -- "$cur") ) ;;
        dhcp)       COMPREPLY=( $(compgen -W "leases" -- "$cur") ) ;;
        show)       COMPREPLY=( $(compgen -W "$common" -- "$cur") ) ;;
        power)      COMPREPLY=( $(compgen -W "off reboot" -- "$cur") ) ;;
        cache)      COMPREPLY=( $(compgen -W "stats clear" -- "$cur") ) ;;
        console)    COMPREPLY=( $(compgen -W "--refresh" -- "$cur") ) ;;
        completion) COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") ) ;;
        esac
        return 0
    fi

    sub=${COMP_WORDS[2]}
    local opts=""
    [[ "$cmd" == show ]] && sub=""
    case "$cmd $sub" in
    "config show"|"config set"|"config delete") opts="--output -o" ;;
    "config save")          opts="--file --output -o" ;;
    "config load")          opts="--file --yes -y --output -o" ;;
    "config edit")          opts="--from --color --no-color --yes -y --output -o" ;;
    "config export")        opts="--dest -d --aws-profile --aws-region --s3-endpoint --output -o" ;;
    "config env")           opts="$common" ;;
    "firewall groups")      opts="$common --type" ;;
    "firewall group-create") opts="--type --name -n --items -i" ;;
    "firewall group-delete") opts="--type --name -n --yes -y" ;;
    "ntp servers"|"ntp status") opts="$common" ;;
    "ntp add")              opts="--server --pool --noselect --prefer" ;;
    "ntp remove")           opts="--server" ;;
    "ssh show")             opts="$common" ;;
    "routing table")        opts="$common --vrf" ;;
    "dhcp leases"|"show ")  opts="$common" ;;
    "ssh update")           opts="--port --password-auth --no-password-auth --loglevel --keepalive" ;;
    "power off"|"power reboot") opts="--yes -y" ;;
    "cache stats")          opts="$common --backend" ;;
    "cache clear")          opts="--pattern -p" ;;
    esac

    case "$prev" in
    --output|-o)
        COMPREPLY=( $(compgen -W "text json yaml raw" -- "$cur") )
        return 0
        ;;
    --type)
        COMPREPLY=( $(compgen -W "address-group network-group port-group interface-group" -- "$cur") )
        return 0
        ;;
    --saving-method)
        COMPREPLY=( $(compgen -W "confirmation direct" -- "$cur") )
        return 0
        ;;
    --loglevel)
        COMPREPLY=( $(compgen -W "QUIET FATAL ERROR INFO VERBOSE DEBUG DEBUG1 DEBUG2 DEBUG3" -- "$cur") )
        return 0
        ;;
    --from|--dest|-d)
        COMPREPLY=( $(compgen -f -- "$cur") )
        return 0
        ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _vyctl vyctl
`

const zshCompletionScript = `#compdef vyctl

_vyctl() {
  local -a cmds
  cmds=(
    'config:configuration tree operations'
    'firewall:firewall group operations'
    'ntp:NTP service operations'
    'ssh:SSH service operations'
    'routing:routing table operations'
    'dhcp:DHCP server operations'
    'show:run an operational-mode show command'
    'power:power off or reboot the router'
    'cache:response cache operations'
    'console:interactive console with a live cache dashboard'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '--local[show timestamps in the configured timezone]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'vyctl commands' cmds
    return
  fi

  if (( CURRENT == 3 )); then
    case $words[2] in
      config)     _values 'subcommand' show set delete save load edit export env ;;
      firewall)   _values 'subcommand' groups group-create group-delete ;;
      ntp)        _values 'subcommand' servers status add remove ;;
      ssh)        _values 'subcommand' show update ;;
      routing)    _values 'subcommand' table ;;
      dhcp)       _values 'subcommand' leases ;;
      show)       _arguments -C $common '*:path' ;;
      power)      _values 'subcommand' off reboot ;;
      cache)      _values 'subcommand' stats clear ;;
      console)    _arguments '--refresh[refresh interval]:duration' ;;
      completion) _values 'shell' bash zsh ;;
    esac
    return
  fi

  local grouptypes='(address-group network-group port-group interface-group)'
  case "$words[2] $words[3]" in
    "config show"|"config set"|"config delete")
      _arguments -C '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw)' '*:path'
      ;;
    "config save")
      _arguments -C '--file[configuration file]:file'
      ;;
    "config load")
      _arguments -C '--file[configuration file]:file' '(-y --yes)'{-y,--yes}'[do not ask]'
      ;;
    "config edit")
      _arguments -C '--from[edited document]:file:_files' '(-y --yes)'{-y,--yes}'[do not ask]' '*:path'
      ;;
    "config export")
      _arguments -C \
        '(-d --dest)'{-d,--dest}'[destination]:dest:_files' \
        '--aws-profile[AWS profile]:profile' \
        '--aws-region[AWS region]:region' \
        '--s3-endpoint[S3 endpoint]:url' \
        '*:path'
      ;;
    "firewall groups")
      _arguments -C $common "--type[group type]:type:$grouptypes"
      ;;
    "firewall group-create")
      _arguments -C "--type[group type]:type:$grouptypes" '(-n --name)'{-n,--name}'[group name]:name' '(-i --items)'{-i,--items}'[members]:items'
      ;;
    "firewall group-delete")
      _arguments -C "--type[group type]:type:$grouptypes" '(-n --name)'{-n,--name}'[group name]:name' '(-y --yes)'{-y,--yes}'[do not ask]'
      ;;
    "ntp add")
      _arguments -C '--pool[server is a pool]' '--noselect[never select]' '--prefer[prefer]' '1:server'
      ;;
    "ntp remove")
      _arguments -C '1:server'
      ;;
    "routing table")
      _arguments -C $common '--vrf[only this VRF]:vrf'
      ;;
    show\ *)
      _arguments -C $common '*:path'
      ;;
    "ssh update")
      _arguments -C \
        '--port[listening port]:port' \
        '(--password-auth --no-password-auth)--password-auth[allow password authentication]' \
        '(--password-auth --no-password-auth)--no-password-auth[deny password authentication]' \
        '--loglevel[log level]:level:(QUIET FATAL ERROR INFO VERBOSE DEBUG DEBUG1 DEBUG2 DEBUG3)' \
        '--keepalive[keepalive seconds]:seconds'
      ;;
    "power off"|"power reboot")
      _arguments -C '(-y --yes)'{-y,--yes}'[do not ask]'
      ;;
    "cache stats")
      _arguments -C $common '--backend[backend statistics]'
      ;;
    "cache clear")
      _arguments -C '(-p --pattern)'{-p,--pattern}'[key prefix]:prefix'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _vyctl vyctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := stdout(cmd)
	switch firstArg(cmd, "") {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(stderr(cmd), "usage: vyctl completion [bash|zsh]")
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "vyctl completion [bash|zsh]",
		Metadata:  withMeta(meta),
		Action:    CompletionCommandAction,
	}
}
